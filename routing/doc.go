// Package routing selects a target agent by evaluating a domain's ordered
// routing rules against the keywords of a user request. Matching is
// case-normalized and whitespace-trimmed, exact word or substring only:
// fuzzy matching is deliberately out of scope.
package routing

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turnflow/turnflow/domain"
	"github.com/turnflow/turnflow/internal/testutil"
)

func TestSelectMapsWorkflowTypes(t *testing.T) {
	tests := []struct {
		workflow domain.WorkflowType
		want     string
	}{
		{domain.WorkflowPipeline, "pipeline"},
		{domain.WorkflowHandoff, "handoff"},
		{domain.WorkflowHybrid, "hybrid"},
		{domain.WorkflowSupervisor, "supervisor"},
		{"", "supervisor"},
		{"something-else", "supervisor"},
	}

	for _, tt := range tests {
		t.Run(string(tt.workflow), func(t *testing.T) {
			cfg := testutil.NewConfigBuilder("d").
				Agent("a").
				Default("a").
				Workflow(tt.workflow).
				Build()

			assert.Equal(t, tt.want, Select(cfg).Name())
		})
	}
}

func TestSelectIsPure(t *testing.T) {
	cfg := testutil.NewConfigBuilder("d").
		Agent("a").
		Default("a").
		Workflow(domain.WorkflowHandoff).
		Build()

	first := Select(cfg)
	second := Select(cfg)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.WorkflowHandoff, cfg.Workflow)
}

package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StartPlanSpan starts a span around building an action plan for a project.
func StartPlanSpan(ctx context.Context, projectPath string, installedCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "plan.build",
		trace.WithAttributes(
			attribute.String("project.path", projectPath),
			attribute.Int("installed.count", installedCount),
			AttrOperation.String("plan"),
		),
	)
}

// StartApplySpan starts a span around executing an action plan.
func StartApplySpan(ctx context.Context, projectPath string, actionCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "plan.apply",
		trace.WithAttributes(
			attribute.String("project.path", projectPath),
			attribute.Int("plan.actions", actionCount),
			AttrOperation.String("apply"),
		),
	)
}

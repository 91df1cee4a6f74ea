package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	types "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application/types"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/sequences"
	orderworkflows "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.DecisionWorkflows = (*TemporalDecisionWorkflows)(nil)
	_ ports.DecisionWorkflows = (*InlineDecisionWorkflows)(nil)
)

// WorkflowStarter is the part of client.Client the orchestrator uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalDecisionWorkflows runs approve/reject decisions as Temporal workflows.
// One decision workflow may run per order at a time.
type TemporalDecisionWorkflows struct {
	client    WorkflowStarter
	taskQueue string
}

// NewTemporalDecisionWorkflows wires a Temporal client into the orchestrator.
func NewTemporalDecisionWorkflows(c WorkflowStarter) *TemporalDecisionWorkflows {
	return &TemporalDecisionWorkflows{client: c, taskQueue: orderworkflows.OrderDecisionTaskQueue}
}

// ApproveOrder starts an approval workflow and waits for its result.
func (o *TemporalDecisionWorkflows) ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error) {
	return o.decide(ctx, sequences.OrderDecision{
		Kind:           sequences.DecisionApprove,
		Actor:          input.Actor,
		OrderID:        input.OrderID,
		Remarks:        input.Remarks,
		IdempotencyKey: input.IdempotencyKey,
	})
}

// RejectOrder starts a rejection workflow and waits for its result.
func (o *TemporalDecisionWorkflows) RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error) {
	return o.decide(ctx, sequences.OrderDecision{
		Kind:           sequences.DecisionReject,
		Actor:          input.Actor,
		OrderID:        input.OrderID,
		Remarks:        input.Remarks,
		IdempotencyKey: input.IdempotencyKey,
	})
}

func (o *TemporalDecisionWorkflows) decide(ctx context.Context, decision sequences.OrderDecision) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal decision workflows not configured")
	}
	options := decisionStartOptions(decision.OrderID, o.taskQueue)
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderDecisionWorkflowName,
		orderworkflows.OrderDecisionWorkflowInput{Decision: decision, TraceID: workflowTraceID(ctx)})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: decision already in progress", application.ErrConcurrentUpdate)
		}
		return nil, err
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, translateWorkflowError(err)
	}
	return &order, nil
}

// decisionStartOptions makes a second decision on the same order fail while one is running,
// instead of attaching to the running workflow and returning its result. Once a decision
// has finished a new run may start; the activity then reports the order as no longer pending.
func decisionStartOptions(orderID, taskQueue string) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:                                       DecisionWorkflowID(orderID),
		TaskQueue:                                taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
		WorkflowIDConflictPolicy:                 enumspb.WORKFLOW_ID_CONFLICT_POLICY_FAIL,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
}

// DecisionWorkflowID is the workflow id used for decisions on orderID.
func DecisionWorkflowID(orderID string) string {
	return "order-decision-" + orderID
}

// translateWorkflowError rebuilds the categorised service error carried by an activity failure.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() != "" {
		return application.ErrorFromCode(appErr.Type(), appErr.Message())
	}
	return err
}

// InlineDecisionWorkflows executes decisions directly without Temporal, useful for tests or dev fallbacks.
type InlineDecisionWorkflows struct {
	service ports.Service
}

// NewInlineDecisionWorkflows wraps the orders service for synchronous execution.
func NewInlineDecisionWorkflows(service ports.Service) *InlineDecisionWorkflows {
	return &InlineDecisionWorkflows{service: service}
}

// ApproveOrder delegates to the application service.
func (o *InlineDecisionWorkflows) ApproveOrder(ctx context.Context, input types.ApproveOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline decision workflows not configured")
	}
	return o.service.ApproveOrder(ctx, input)
}

// RejectOrder delegates to the application service.
func (o *InlineDecisionWorkflows) RejectOrder(ctx context.Context, input types.RejectOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline decision workflows not configured")
	}
	return o.service.RejectOrder(ctx, input)
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

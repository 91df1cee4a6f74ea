package ordersserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/application"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
	apierrors "github.com/ahmad8929/bloom-tales-frontend-sub000/internal/shared/errors"
)

var orderResponder = apierrors.NewResponder("", apierrors.WithMapper(mapOrderError))

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	orderResponder.Respond(c, problem)
}

// respondOrderServiceError renders a service failure as an RFC 7807 problem.
func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	orderResponder.RespondError(c, err)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var (
		problem  apierrors.ProblemDetail
		recovery string
	)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		problem, recovery = apierrors.ErrNotFound, apierrors.RecoveryNone
	case errors.Is(err, ports.ErrIdempotencyConflict):
		problem, recovery = apierrors.ErrUnprocessable, apierrors.RecoveryFixInput
	case errors.Is(err, ports.ErrIdempotencyInProgress):
		problem, recovery = apierrors.ErrConflict, apierrors.RecoveryRetry
	case errors.Is(err, ports.ErrDuplicateOrderNumber):
		problem, recovery = apierrors.ErrConflict, apierrors.RecoveryFixInput
	case errors.Is(err, application.ErrInvalidInput):
		problem, recovery = apierrors.ErrValidation, apierrors.RecoveryFixInput
	case errors.Is(err, application.ErrForbidden):
		problem, recovery = apierrors.ErrForbidden, apierrors.RecoveryNone
	case errors.Is(err, application.ErrConcurrentUpdate), errors.Is(err, application.ErrStateConflict):
		problem, recovery = apierrors.ErrConflict, apierrors.RecoveryRefetch
	default:
		return apierrors.ProblemDetail{}, false
	}
	return problem.
		WithDetail(err.Error()).
		WithCode(application.ErrorCode(err)).
		WithRecovery(recovery), true
}

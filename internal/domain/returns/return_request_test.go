package returns

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/backend/internal/domain/shared"
)

func newTestRequest(t *testing.T, requestType RequestType) *ReturnRequest {
	t.Helper()

	var newVariant *uuid.UUID
	if requestType == RequestTypeReplace {
		v := uuid.New()
		newVariant = &v
	}

	rr, err := NewReturnRequest(
		uuid.New(), uuid.New(), uuid.New(),
		requestType, newVariant,
		"damaged on arrival", "box was crushed", []string{"img1.jpg"},
	)
	require.NoError(t, err)
	return rr
}

func TestNewReturnRequest(t *testing.T) {
	t.Run("creates pending return request", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)

		assert.Equal(t, StatusPending, rr.Status)
		assert.Equal(t, RequestTypeReturn, rr.Type)
		assert.Nil(t, rr.NewVariantID)
		assert.Equal(t, 1, rr.GetVersion())
		assert.Len(t, rr.GetDomainEvents(), 1)
	})

	t.Run("replacement requires new variant", func(t *testing.T) {
		_, err := NewReturnRequest(
			uuid.New(), uuid.New(), uuid.New(),
			RequestTypeReplace, nil,
			"wrong size", "", nil,
		)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_VARIANT_REQUIRED", domainErr.Code)
	})

	t.Run("refund return forbids new variant", func(t *testing.T) {
		v := uuid.New()
		_, err := NewReturnRequest(
			uuid.New(), uuid.New(), uuid.New(),
			RequestTypeReturn, &v,
			"damaged", "", nil,
		)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_VARIANT_FORBIDDEN", domainErr.Code)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewReturnRequest(
			uuid.New(), uuid.New(), uuid.New(),
			RequestType("EXCHANGE"), nil,
			"damaged", "", nil,
		)
		assert.Error(t, err)
	})

	t.Run("requires reason", func(t *testing.T) {
		_, err := NewReturnRequest(
			uuid.New(), uuid.New(), uuid.New(),
			RequestTypeReturn, nil,
			"", "", nil,
		)
		assert.Error(t, err)
	})
}

func TestStatusCanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:       {StatusApproved, StatusRejected},
		StatusApproved:      {StatusRefundPending, StatusProcessing},
		StatusRefundPending: {StatusProcessing},
		StatusProcessing:    {StatusCompleted},
		StatusRejected:      {},
		StatusCompleted:     {},
	}
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusRefundPending, StatusProcessing, StatusCompleted}

	for from, targets := range allowed {
		for _, to := range all {
			want := false
			for _, a := range targets {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestApproveReject(t *testing.T) {
	t.Run("approve pending request", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		approver := uuid.New()

		err := rr.Approve(approver)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, rr.Status)
		assert.Equal(t, approver, *rr.ApprovedBy)
		assert.NotNil(t, rr.ApprovedAt)
	})

	t.Run("reject pending request requires comment", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)

		err := rr.Reject(uuid.New(), "")

		assert.Error(t, err)
		assert.Equal(t, StatusPending, rr.Status)
	})

	t.Run("reject pending request", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)

		err := rr.Reject(uuid.New(), "item visibly used")

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, rr.Status)
		assert.True(t, rr.IsTerminal())
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.Approve(uuid.New())

		assert.Error(t, err)
	})

	t.Run("cannot reject approved request", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.Reject(uuid.New(), "changed my mind")

		assert.Error(t, err)
		assert.Equal(t, StatusApproved, rr.Status)
	})
}

func TestRecordReturnShipment(t *testing.T) {
	t.Run("approved return enters refund pending", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.RecordReturnShipment("WB123", "REF-1", `{"ok":true}`)

		require.NoError(t, err)
		assert.Equal(t, StatusRefundPending, rr.Status)
		assert.Equal(t, "WB123", rr.Waybill)
		assert.NotNil(t, rr.ShipmentBookedAt)
	})

	t.Run("requires approved status", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)

		err := rr.RecordReturnShipment("WB123", "REF-1", "")

		assert.Error(t, err)
		assert.Empty(t, rr.Waybill)
	})

	t.Run("not applicable to replacements", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReplace)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.RecordReturnShipment("WB123", "REF-1", "")

		assert.Error(t, err)
	})

	t.Run("requires waybill", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.RecordReturnShipment("", "REF-1", "")

		assert.Error(t, err)
		assert.Equal(t, StatusApproved, rr.Status)
	})
}

func TestRecordReplacementShipment(t *testing.T) {
	t.Run("approved replacement enters processing directly", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReplace)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.RecordReplacementShipment("WB456", "REF-2", `{"ok":true}`)

		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, rr.Status)
		assert.Equal(t, "WB456", rr.Waybill)
		assert.Empty(t, rr.RefundID)
	})

	t.Run("not applicable to refund returns", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.RecordReplacementShipment("WB456", "REF-2", "")

		assert.Error(t, err)
	})
}

func TestConfirmRefund(t *testing.T) {
	t.Run("refund pending to processing", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))
		require.NoError(t, rr.RecordReturnShipment("WB123", "REF-1", ""))

		err := rr.ConfirmRefund("rfnd_001", decimal.NewFromInt(1499), RefundStatusInitiated)

		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, rr.Status)
		assert.Equal(t, "rfnd_001", rr.RefundID)
		assert.True(t, rr.RefundAmount.Equal(decimal.NewFromInt(1499)))
		assert.NotNil(t, rr.RefundIssuedAt)
	})

	t.Run("rejected outside refund pending", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.ConfirmRefund("rfnd_001", decimal.NewFromInt(1499), RefundStatusInitiated)

		assert.Error(t, err)
		assert.Equal(t, StatusApproved, rr.Status)
	})

	t.Run("requires positive amount", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))
		require.NoError(t, rr.RecordReturnShipment("WB123", "REF-1", ""))

		err := rr.ConfirmRefund("rfnd_001", decimal.Zero, RefundStatusInitiated)

		assert.Error(t, err)
		assert.Equal(t, StatusRefundPending, rr.Status)
	})
}

func TestComplete(t *testing.T) {
	t.Run("full return lifecycle", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))
		require.NoError(t, rr.RecordReturnShipment("WB123", "REF-1", ""))
		require.NoError(t, rr.ConfirmRefund("rfnd_001", decimal.NewFromInt(999), RefundStatusInitiated))

		err := rr.Complete()

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, rr.Status)
		assert.True(t, rr.IsTerminal())
	})

	t.Run("full replacement lifecycle", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReplace)
		require.NoError(t, rr.Approve(uuid.New()))
		require.NoError(t, rr.RecordReplacementShipment("WB456", "REF-2", ""))

		err := rr.Complete()

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, rr.Status)
	})

	t.Run("cannot complete before processing", func(t *testing.T) {
		rr := newTestRequest(t, RequestTypeReturn)
		require.NoError(t, rr.Approve(uuid.New()))

		err := rr.Complete()

		assert.Error(t, err)
	})
}

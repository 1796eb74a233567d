package order

import (
	"errors"

	"github.com/lystzs/family-asset-manager/internal/external/backend"
)

var (
	ErrNoChange         = errors.New("변경된 내용이 없습니다.")
	ErrQuantityIncrease = errors.New("수량 증가는 정정 주문으로 불가능합니다. 새로운 주문을 넣어주세요.")
)

// Revision kinds
const (
	RevisionRevise = "REVISE"
	RevisionCancel = "CANCEL"
)

// Revision is the broker call an edit of an open order turns into.
// 가격 변경은 잔량 전체 정정, 같은 가격의 수량 감소는 차이만큼 부분 취소.
type Revision struct {
	Kind   string                   `json:"kind"`
	Revise *backend.RevisionRequest `json:"revise,omitempty"`
	Cancel *backend.CancelRequest   `json:"cancel,omitempty"`
}

// DecideRevision compares the edited values with the open order
func DecideRevision(accountID int64, original backend.BrokerOrder, newQty int64, newPrice float64) (*Revision, error) {
	origQty := original.RemainingQty()
	origPrice := backend.ParseNumber(original.OrdUnpr)

	if newQty == origQty && newPrice == origPrice {
		return nil, ErrNoChange
	}

	if newPrice != origPrice {
		ordDvsn := original.OrdDvsn
		if ordDvsn == "" {
			ordDvsn = "00"
		}
		return &Revision{
			Kind: RevisionRevise,
			Revise: &backend.RevisionRequest{
				AccountID: accountID,
				OrgnOdno:  original.Odno,
				Quantity:  newQty,
				Price:     newPrice,
				OrdDvsn:   ordDvsn,
				AllQty:    true,
			},
		}, nil
	}

	if newQty < origQty {
		return &Revision{
			Kind: RevisionCancel,
			Cancel: &backend.CancelRequest{
				AccountID: accountID,
				OrgnOdno:  original.Odno,
				Quantity:  origQty - newQty,
				AllQty:    false,
			},
		}, nil
	}

	return nil, ErrQuantityIncrease
}

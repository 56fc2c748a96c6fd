package model

// BuyerRef is the tagged view over the flattened buyers table: a buyer is
// either confirmed (linked to a slot) or provisional (an unmatched upload
// identified only by what the uploader supplied). Services switch on the
// variant instead of reading IsTemporary directly.
type BuyerRef interface {
	isBuyerRef()
}

type ConfirmedBuyer struct {
	SlotID uint
}

type ProvisionalBuyer struct {
	OrderNumber       string
	AccountDescriptor string
}

func (ConfirmedBuyer) isBuyerRef()   {}
func (ProvisionalBuyer) isBuyerRef() {}

func (b *Buyer) Ref() BuyerRef {
	if !b.IsTemporary && b.SlotID != nil {
		return ConfirmedBuyer{SlotID: *b.SlotID}
	}
	return ProvisionalBuyer{
		OrderNumber:       b.OrderNumber,
		AccountDescriptor: b.AccountDescriptor,
	}
}

package gaveltest

import "github.com/iov-one/gavel"

type Handler struct {
	checkCall   int
	CheckResult gavel.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult gavel.DeliverResult
	DeliverErr    error
}

var _ gavel.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	h.checkCall++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	h.deliverCall++
	return &h.DeliverResult, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

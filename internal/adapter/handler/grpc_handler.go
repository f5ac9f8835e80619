package handler

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/smartor/case-ledger/internal/adapter/handler/pb"
	"github.com/smartor/case-ledger/internal/core/service"
	"github.com/smartor/case-ledger/internal/port"
)

type GRPCHandler struct {
	pb.UnimplementedLedgerServiceServer
	ledger *service.LedgerService
}

func NewGRPCHandler(ledger *service.LedgerService) *GRPCHandler {
	return &GRPCHandler{ledger: ledger}
}

func (h *GRPCHandler) RecordUsage(ctx context.Context, req *pb.RecordUsageRequest) (*pb.RecordUsageResponse, error) {
	u := port.Utterance{Text: req.GetText()}

	lines, err := h.ledger.RecordUsage(ctx, req.GetRequestId(), req.GetCaseId(), u)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			return &pb.RecordUsageResponse{
				Success: false,
				Message: "duplicate request",
			}, nil
		}
		if errors.Is(err, service.ErrNoCatalog) {
			return &pb.RecordUsageResponse{
				Success: false,
				Message: "catalog not loaded",
			}, nil
		}
		return &pb.RecordUsageResponse{
			Success: false,
			Message: "action failed",
		}, nil
	}

	out := make([]*pb.UsageLine, 0, len(lines))
	for _, l := range lines {
		cost := decimal.Zero
		if l.Status == service.LineRecorded {
			cost = l.Cost
		}
		out = append(out, &pb.UsageLine{
			Item:   l.Item,
			Qty:    l.Qty.String(),
			Cost:   cost.StringFixed(2),
			Status: string(l.Status),
			Error:  l.Error,
		})
	}

	return &pb.RecordUsageResponse{
		Success: true,
		Lines:   out,
	}, nil
}

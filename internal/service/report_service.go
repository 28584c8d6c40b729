package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/repository"
)

const defaultBestClientsLimit = 2

type ExcelGenerator interface {
	Generate(report model.EarningsReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(receipt model.PaymentReceipt) ([]byte, error)
}

// ReportService serves the admin aggregations and the document exports.
type ReportService struct {
	store repository.Store
	excel ExcelGenerator
	pdf   PDFGenerator
	log   zerolog.Logger
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(store repository.Store, excel ExcelGenerator, pdf PDFGenerator, log zerolog.Logger) *ReportService {
	return &ReportService{store: store, excel: excel, pdf: pdf, log: log}
}

// BestProfession returns the profession with the highest paid job volume in
// the inclusive window, or nil when no job was paid in it. Ties break toward
// the lexicographically smaller profession.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	rows, err := s.store.ProfessionEarnings(ctx, start, end)
	if err != nil {
		return nil, normalizeError(s.log, "best profession", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// BestClients returns the clients that paid the most in the inclusive window.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error) {
	if limit <= 0 {
		limit = defaultBestClientsLimit
	}
	rows, err := s.store.TopClients(ctx, start, end, limit)
	if err != nil {
		return nil, normalizeError(s.log, "best clients", err)
	}
	return rows, nil
}

// EarningsReport exports per-profession paid totals as a workbook.
func (s *ReportService) EarningsReport(ctx context.Context, start, end time.Time) (*ExportResult, error) {
	rows, err := s.store.ProfessionEarnings(ctx, start, end)
	if err != nil {
		return nil, normalizeError(s.log, "earnings report", err)
	}

	report := model.EarningsReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Rows:        rows,
	}
	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, normalizeError(s.log, "earnings report", err)
	}

	name := fmt.Sprintf("earnings-%s-%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	return &ExportResult{FileName: name, Content: content}, nil
}

// PaymentReceipt renders a receipt for a paid job. Either party of the job's
// contract may request it; anyone else is denied.
func (s *ReportService) PaymentReceipt(ctx context.Context, jobID, callerID int64) (*ExportResult, error) {
	job, err := s.store.JobByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrJobNotFound(jobID)
	}
	if err != nil {
		return nil, normalizeError(s.log, "payment receipt", err)
	}

	contract, err := s.store.ContractForParty(ctx, job.ContractID, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccessDenied()
	}
	if err != nil {
		return nil, normalizeError(s.log, "payment receipt", err)
	}

	if !job.IsPaid() {
		return nil, ErrJobNotPaid()
	}

	client, err := s.store.ProfileByID(ctx, contract.ClientID)
	if err != nil {
		return nil, normalizeError(s.log, "payment receipt", err)
	}
	contractor, err := s.store.ProfileByID(ctx, contract.ContractorID)
	if err != nil {
		return nil, normalizeError(s.log, "payment receipt", err)
	}

	content, err := s.pdf.Generate(model.PaymentReceipt{
		Job:        *job,
		Contract:   *contract,
		Client:     *client,
		Contractor: *contractor,
	})
	if err != nil {
		return nil, normalizeError(s.log, "payment receipt", err)
	}

	return &ExportResult{
		FileName: fmt.Sprintf("receipt-job-%d.pdf", job.ID),
		Content:  content,
	}, nil
}

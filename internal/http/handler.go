package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-billing/internal/http/middleware"
	"github.com/nurpe/contracts-billing/internal/model"
	"github.com/nurpe/contracts-billing/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ContractReader interface {
	GetContractByID(ctx context.Context, contractID, callerID int64) (*model.Contract, error)
	GetActiveContracts(ctx context.Context, callerID int64) ([]model.Contract, error)
	GetUnpaidJobs(ctx context.Context, callerID int64) ([]model.Job, error)
}

type Biller interface {
	PayForJob(ctx context.Context, jobID, callerID int64) error
	Deposit(ctx context.Context, clientID int64, rawAmount string) error
}

type Reporter interface {
	BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientEarnings, error)
	EarningsReport(ctx context.Context, start, end time.Time) (*service.ExportResult, error)
	PaymentReceipt(ctx context.Context, jobID, callerID int64) (*service.ExportResult, error)
}

type Handler struct {
	contracts ContractReader
	billing   Biller
	reports   Reporter
	log       zerolog.Logger
}

func NewHandler(contracts ContractReader, billing Biller, reports Reporter, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, billing: billing, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Deposit is administrative and deliberately carries no caller check.
	router.POST("/balances/deposit/:clientId", h.deposit)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:jobId/pay", h.payJob)
	protected.GET("/receipts/:jobId", h.jobReceipt)
	protected.GET("/admin/best-profession", h.bestProfession)
	protected.GET("/admin/best-clients", h.bestClients)
	protected.GET("/admin/earnings-report", h.earningsReport)
}

type errorResponse struct {
	Code    service.Code `json:"code"`
	Message string       `json:"message"`
}

func (h *Handler) getContract(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		deny(c)
		return
	}

	contract, err := h.contracts.GetContractByID(c.Request.Context(), parseID(c.Param("id")), profile.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		deny(c)
		return
	}

	contracts, err := h.contracts.GetActiveContracts(c.Request.Context(), profile.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		deny(c)
		return
	}

	jobs, err := h.contracts.GetUnpaidJobs(c.Request.Context(), profile.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		deny(c)
		return
	}

	if err := h.billing.PayForJob(c.Request.Context(), parseID(c.Param("jobId")), profile.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deposit(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		h.writeError(c, service.ErrInvalidAmount())
		return
	}

	err := h.billing.Deposit(c.Request.Context(), parseID(c.Param("clientId")), rawAmount(body["amount"]))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) jobReceipt(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		deny(c)
		return
	}

	result, err := h.reports.PaymentReceipt(c.Request.Context(), parseID(c.Param("jobId")), profile.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type bestProfessionResponse struct {
	Profession *string `json:"profession"`
}

func (h *Handler) bestProfession(c *gin.Context) {
	start, end := parseWindow(c)

	row, err := h.reports.BestProfession(c.Request.Context(), start, end)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var resp bestProfessionResponse
	if row != nil {
		resp.Profession = &row.Profession
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bestClients(c *gin.Context) {
	start, end := parseWindow(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.reports.BestClients(c.Request.Context(), start, end, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if rows == nil {
		rows = []model.ClientEarnings{}
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) earningsReport(c *gin.Context) {
	start, end := parseWindow(c)

	result, err := h.reports.EarningsReport(c.Request.Context(), start, end)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	e, ok := service.AsDomain(err)
	if !ok {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		e = service.ErrInternal()
	}
	c.JSON(statusFor(e.Code), errorResponse{Code: e.Code, Message: e.Message})
}

func deny(c *gin.Context) {
	e := service.ErrAccessDenied()
	c.JSON(http.StatusForbidden, errorResponse{Code: e.Code, Message: e.Message})
}

func statusFor(code service.Code) int {
	switch code {
	case service.CodeAccessDenied:
		return http.StatusForbidden
	case service.CodeContractNotFound, service.CodeJobNotFound, service.CodeClientNotFound:
		return http.StatusNotFound
	case service.CodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// parseID maps malformed path ids to 0, which no row ever has, so lookups
// fall through to their not-found error the same way an unknown id would.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// rawAmount flattens whatever JSON value arrived in the amount field into a
// string for the deposit parser; anything unusable ends up invalid there.
func rawAmount(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// parseWindow reads the start/end query params. Malformed or absent values
// fall back to the zero time, matching nothing rather than failing the call.
func parseWindow(c *gin.Context) (time.Time, time.Time) {
	return parseDate(c.Query("start")), parseDate(c.Query("end"))
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

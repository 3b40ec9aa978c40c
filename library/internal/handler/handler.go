package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/library/internal/service"
	"github.com/Astemirdum/library-circulation/pkg/kafka"
	md "github.com/Astemirdum/library-circulation/pkg/middleware"
	"github.com/Astemirdum/library-circulation/pkg/validate"
	_ "github.com/Astemirdum/library-circulation/swagger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	circulationSvc CirculationService
	settlementSvc  SettlementService
	statsSvc       StatsService
	eventLog       EventLog
	log            *zap.Logger
}

func New(circulationSvc CirculationService, settlementSvc SettlementService, statsSvc StatsService, eventLog EventLog, log *zap.Logger) *Handler {
	h := &Handler{
		circulationSvc: circulationSvc,
		settlementSvc:  settlementSvc,
		statsSvc:       statsSvc,
		eventLog:       eventLog,
		log:            log,
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.GetBooks)
	api.GET("/books/search", h.SearchBooks)
	api.GET("/books/:bookId", h.GetBook)
	api.POST("/books", h.AddBook)

	api.POST("/borrow", h.Borrow)
	api.POST("/return", h.Return)
	api.GET("/patrons/:patronId/fees/:bookId", h.GetLateFee)
	api.GET("/patrons/:patronId/status", h.GetPatronStatus)

	api.POST("/payments", h.PayLateFees)
	api.POST("/refunds", h.RefundLateFee)

	api.GET("/stats", h.GetStats)

	return e
}

// Result is the envelope of every circulation response.
type Result struct {
	Success bool        `json:"success"`
	Reason  errs.Reason `json:"reason,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    any         `json:"data,omitempty"`
}

func ok(c echo.Context, code int, msg string, data any) error {
	return c.JSON(code, Result{Success: true, Message: msg, Data: data})
}

func (h *Handler) fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	reason := errs.ReasonOf(err)
	code := statusOf(reason)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.JSON(code, Result{Reason: reason, Message: errs.MessageOf(err)})
}

func statusOf(reason errs.Reason) int {
	switch reason {
	case errs.ReasonInvalidPatron, errs.ReasonInvalidTransaction, errs.ReasonInvalidAmount, errs.ReasonInvalidBook:
		return http.StatusBadRequest
	case errs.ReasonBookNotFound, errs.ReasonNoActiveBorrow:
		return http.StatusNotFound
	case errs.ReasonBookUnavailable, errs.ReasonBorrowLimit, errs.ReasonAlreadyBorrowed, errs.ReasonDuplicateISBN:
		return http.StatusConflict
	case errs.ReasonNoFeesOwed:
		return http.StatusUnprocessableEntity
	case errs.ReasonGatewayDeclined:
		return http.StatusPaymentRequired
	case errs.ReasonGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) GetBooks(c echo.Context) error {
	var (
		err  error
		page int
		size int
	)
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil || page < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil || size < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}
	books, err := h.circulationSvc.ListBooks(c.Request().Context(), page, size)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) SearchBooks(c echo.Context) error {
	term := c.QueryParam("q")
	searchType := model.SearchType(c.QueryParam("type"))
	if searchType == "" {
		searchType = model.SearchTitle
	}
	books, err := h.circulationSvc.SearchBooks(c.Request().Context(), term, searchType)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("bookId"))
	if err != nil || id <= 0 {
		return h.fail(c, errs.New(errs.ReasonInvalidBook, "bookId is invalid"))
	}
	book, err := h.circulationSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) AddBook(c echo.Context) error {
	var req model.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return h.fail(c, service.InvalidBook(err))
	}
	book, err := h.circulationSvc.AddBook(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusCreated,
		fmt.Sprintf("Book \"%s\" has been successfully added to the catalog.", book.Title), book)
}

func bindCirculation(c echo.Context) (model.CirculationRequest, error) {
	var req model.CirculationRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return req, errs.New(errs.ReasonInvalidBook, "bookId is invalid")
	}
	return req, nil
}

func (h *Handler) Borrow(c echo.Context) error {
	req, err := bindCirculation(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	loan, err := h.circulationSvc.Borrow(ctx, req.PatronID, req.BookID)
	if err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, kafka.EventCirculation{
		EventType: kafka.EventBorrowed,
		PatronID:  loan.PatronID,
		BookID:    loan.BookID,
	})
	return ok(c, http.StatusCreated, loan.Message, loan)
}

func (h *Handler) Return(c echo.Context) error {
	req, err := bindCirculation(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	ret, err := h.circulationSvc.Return(ctx, req.PatronID, req.BookID)
	if err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, kafka.EventCirculation{
		EventType: kafka.EventReturned,
		PatronID:  ret.PatronID,
		BookID:    ret.BookID,
		Amount:    ret.LateFee.StringFixed(2),
	})
	return ok(c, http.StatusOK, ret.Message, ret)
}

func (h *Handler) GetLateFee(c echo.Context) error {
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil || bookID <= 0 {
		return h.fail(c, errs.New(errs.ReasonInvalidBook, "bookId is invalid"))
	}
	lf, err := h.circulationSvc.AssessLateFee(c.Request().Context(), c.Param("patronId"), bookID)
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, lf.Status.Text(), lf)
}

func (h *Handler) GetPatronStatus(c echo.Context) error {
	st, err := h.circulationSvc.PatronStatus(c.Request().Context(), c.Param("patronId"))
	if err != nil {
		return h.fail(c, err)
	}
	return ok(c, http.StatusOK, "", st)
}

func (h *Handler) PayLateFees(c echo.Context) error {
	var req model.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return h.fail(c, errs.New(errs.ReasonInvalidBook, "bookId is invalid"))
	}
	ctx := c.Request().Context()
	payment, err := h.settlementSvc.PayLateFees(ctx, req.PatronID, req.BookID)
	if err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, kafka.EventCirculation{
		EventType:     kafka.EventFeePaid,
		PatronID:      payment.PatronID,
		BookID:        payment.BookID,
		Amount:        payment.Amount.StringFixed(2),
		TransactionID: payment.TransactionID,
	})
	return ok(c, http.StatusOK, payment.Message, payment)
}

func (h *Handler) RefundLateFee(c echo.Context) error {
	var req model.RefundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	refund, err := h.settlementSvc.RefundLateFeePayment(ctx, req.TransactionID, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, kafka.EventCirculation{
		EventType:     kafka.EventFeeRefunded,
		Amount:        refund.Amount.StringFixed(2),
		TransactionID: refund.TransactionID,
	})
	return ok(c, http.StatusOK, refund.Message, refund)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.statsSvc.Stats(c.Request().Context(), c.QueryParam("patronId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// publish is best effort: the operation already succeeded.
func (h *Handler) publish(ctx context.Context, ev kafka.EventCirculation) {
	if h.eventLog == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()
	if err := h.eventLog.Log(ctx, ev); err != nil {
		h.log.Warn("event log", zap.String("type", string(ev.EventType)), zap.Error(err))
	}
}

package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/handler"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/validate"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/library-circulation/library/internal/handler/mocks"
)

type mocks struct {
	circulation *service_mocks.MockCirculationService
	settlement  *service_mocks.MockSettlementService
	stats       *service_mocks.MockStatsService
}

type response struct {
	expectedCode int
	expectedBody string
}

type testCase struct {
	name         string
	body         string
	mockBehavior func(m mocks)
	response     response
}

func run(t *testing.T, method, target string, register func(e *echo.Echo, h *handler.Handler), tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			m := mocks{
				circulation: service_mocks.NewMockCirculationService(c),
				settlement:  service_mocks.NewMockSettlementService(c),
				stats:       service_mocks.NewMockStatsService(c),
			}
			log := zap.NewExample().Named("test")
			h := handler.New(m.circulation, m.settlement, m.stats, handler.NewStoreLog(m.stats), log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			register(e, h)

			r := httptest.NewRequest(method, target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(m)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

// eventMatcher matches a recorded event by type and, when set, amount.
type eventMatcher struct {
	typ    string
	amount *decimal.Decimal
}

func (m eventMatcher) Matches(x interface{}) bool {
	ev, ok := x.(model.Event)
	if !ok || ev.EventType != m.typ || ev.ID == "" {
		return false
	}
	return m.amount == nil || ev.Amount.Equal(*m.amount)
}

func (m eventMatcher) String() string { return "event " + m.typ }

func eventOfType(typ string) gomock.Matcher {
	return eventMatcher{typ: typ}
}

var t0 = time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)

func TestHandler_Borrow(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.POST("/borrow", h.Borrow) }

	run(t, http.MethodPost, "/borrow", register, []testCase{
		{
			name: "ok",
			body: `{"patronId":"123456","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "123456", 3).Return(model.Loan{
					PatronID:   "123456",
					BookID:     3,
					Title:      "1984",
					BorrowedAt: t0,
					DueAt:      t0.AddDate(0, 0, 14),
					Message:    `Successfully borrowed "1984". Due date: 2024-05-15.`,
				}, nil)
				m.stats.EXPECT().RecordEvent(gomock.Any(), eventOfType("BORROWED")).Return(nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"success":true,"message":"Successfully borrowed \"1984\". Due date: 2024-05-15.","data":{"patronId":"123456","bookId":3,"title":"1984","borrowedAt":"2024-05-01T10:00:00Z","dueAt":"2024-05-15T10:00:00Z","message":"Successfully borrowed \"1984\". Due date: 2024-05-15."}}`,
			},
		},
		{
			name: "event log failure does not fail the request",
			body: `{"patronId":"123456","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "123456", 3).Return(model.Loan{PatronID: "123456", BookID: 3}, nil)
				m.stats.EXPECT().RecordEvent(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name: "err. invalid patron",
			body: `{"patronId":"12a","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "12a", 3).Return(model.Loan{}, errs.ErrInvalidPatron)
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"reason":"INVALID_PATRON","message":"Invalid patron ID. Must be exactly 6 digits."}`,
			},
		},
		{
			name: "err. unavailable",
			body: `{"patronId":"123456","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "123456", 3).Return(model.Loan{}, errs.ErrBookUnavailable)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"success":false,"reason":"BOOK_UNAVAILABLE","message":"This book is currently not available."}`,
			},
		},
		{
			name: "err. limit",
			body: `{"patronId":"123456","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "123456", 3).Return(model.Loan{}, errs.ErrBorrowLimit)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"success":false,"reason":"BORROW_LIMIT_REACHED","message":"You have reached the maximum borrowing limit of 5 books."}`,
			},
		},
		{
			name: "err. store",
			body: `{"patronId":"123456","bookId":3}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Borrow(gomock.Any(), "123456", 3).
					Return(model.Loan{}, errs.Wrap(errs.ReasonStoreError, "Database error occurred while creating borrow record.", errors.New("conn reset")))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"success":false,"reason":"STORE_ERROR","message":"Database error occurred while creating borrow record."}`,
			},
		},
		{
			name:         "err. bad book id",
			body:         `{"patronId":"123456","bookId":0}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"reason":"INVALID_BOOK","message":"bookId is invalid"}`,
			},
		},
		{
			name:         "err. malformed body",
			body:         `{"patronId":`,
			mockBehavior: func(m mocks) {},
			response:     response{expectedCode: http.StatusBadRequest},
		},
	})
}

func TestHandler_Return(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.POST("/return", h.Return) }

	run(t, http.MethodPost, "/return", register, []testCase{
		{
			name: "ok. late",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Return(gomock.Any(), "123456", 1).Return(model.Return{
					PatronID:    "123456",
					BookID:      1,
					Title:       "Dune",
					ReturnedAt:  t0,
					LateFee:     decimal.RequireFromString("2.50"),
					DaysOverdue: 5,
					Message:     `Book "Dune" returned successfully. Late fee: $2.50 (5 days overdue).`,
				}, nil)
				fee := decimal.RequireFromString("2.5")
				m.stats.EXPECT().RecordEvent(gomock.Any(), eventMatcher{typ: "RETURNED", amount: &fee}).Return(nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"success":true,"message":"Book \"Dune\" returned successfully. Late fee: $2.50 (5 days overdue).","data":{"patronId":"123456","bookId":1,"title":"Dune","returnedAt":"2024-05-01T10:00:00Z","lateFee":"2.5","daysOverdue":5,"message":"Book \"Dune\" returned successfully. Late fee: $2.50 (5 days overdue)."}}`,
			},
		},
		{
			name: "err. no active borrow",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().Return(gomock.Any(), "123456", 1).Return(model.Return{}, errs.ErrNoActiveBorrow)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"success":false,"reason":"NO_ACTIVE_BORROW","message":"No active borrow record found for this book and patron."}`,
			},
		},
	})
}

func TestHandler_PayLateFees(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.POST("/payments", h.PayLateFees) }

	run(t, http.MethodPost, "/payments", register, []testCase{
		{
			name: "ok",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().PayLateFees(gomock.Any(), "123456", 1).Return(model.Payment{
					PatronID:      "123456",
					BookID:        1,
					Amount:        decimal.RequireFromString("5.00"),
					TransactionID: "txn_123",
					Message:       "Payment successful! Success",
				}, nil)
				m.stats.EXPECT().RecordEvent(gomock.Any(), eventOfType("FEE_PAID")).Return(nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"success":true,"message":"Payment successful! Success","data":{"patronId":"123456","bookId":1,"amount":"5","transactionId":"txn_123","message":"Payment successful! Success"}}`,
			},
		},
		{
			name: "err. declined",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().PayLateFees(gomock.Any(), "123456", 1).
					Return(model.Payment{}, errs.New(errs.ReasonGatewayDeclined, "Payment failed: Card declined"))
			},
			response: response{
				expectedCode: http.StatusPaymentRequired,
				expectedBody: `{"success":false,"reason":"GATEWAY_DECLINED","message":"Payment failed: Card declined"}`,
			},
		},
		{
			name: "err. gateway down",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().PayLateFees(gomock.Any(), "123456", 1).
					Return(model.Payment{}, errs.Wrap(errs.ReasonGatewayError, "Payment processing error: Network down", errors.New("Network down")))
			},
			response: response{
				expectedCode: http.StatusBadGateway,
				expectedBody: `{"success":false,"reason":"GATEWAY_ERROR","message":"Payment processing error: Network down"}`,
			},
		},
		{
			name: "err. nothing owed",
			body: `{"patronId":"123456","bookId":1}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().PayLateFees(gomock.Any(), "123456", 1).Return(model.Payment{}, errs.ErrNoFeesOwed)
			},
			response: response{
				expectedCode: http.StatusUnprocessableEntity,
				expectedBody: `{"success":false,"reason":"NO_FEES_OWED","message":"No late fees to pay for this book."}`,
			},
		},
	})
}

func TestHandler_RefundLateFee(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.POST("/refunds", h.RefundLateFee) }

	run(t, http.MethodPost, "/refunds", register, []testCase{
		{
			name: "ok",
			body: `{"transactionId":"txn_123","amount":5.00}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().RefundLateFeePayment(gomock.Any(), "txn_123", gomock.Any()).
					Return(model.Refund{TransactionID: "txn_123", Amount: decimal.NewFromInt(5), Message: "Refund processed"}, nil)
				m.stats.EXPECT().RecordEvent(gomock.Any(), eventOfType("FEE_REFUNDED")).Return(nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"success":true,"message":"Refund processed","data":{"transactionId":"txn_123","amount":"5","message":"Refund processed"}}`,
			},
		},
		{
			name: "err. amount",
			body: `{"transactionId":"txn_123","amount":"20"}`,
			mockBehavior: func(m mocks) {
				m.settlement.EXPECT().RefundLateFeePayment(gomock.Any(), "txn_123", gomock.Any()).
					Return(model.Refund{}, errs.New(errs.ReasonInvalidAmount, "Refund amount exceeds maximum late fee."))
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"reason":"INVALID_AMOUNT","message":"Refund amount exceeds maximum late fee."}`,
			},
		},
	})
}

func TestHandler_AddBook(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.POST("/books", h.AddBook) }

	run(t, http.MethodPost, "/books", register, []testCase{
		{
			name: "ok",
			body: `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","totalCopies":2}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().AddBook(gomock.Any(), model.AddBookRequest{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 2}).
					Return(model.Book{ID: 4, Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 2, AvailableCopies: 2}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"success":true,"message":"Book \"Dune\" has been successfully added to the catalog.","data":{"id":4,"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","totalCopies":2,"availableCopies":2}}`,
			},
		},
		{
			name:         "err. isbn",
			body:         `{"title":"Dune","author":"Frank Herbert","isbn":"978-0441013593","totalCopies":2}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"reason":"INVALID_BOOK","message":"ISBN must be exactly 13 digits."}`,
			},
		},
		{
			name:         "err. copies",
			body:         `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","totalCopies":0}`,
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"success":false,"reason":"INVALID_BOOK","message":"Total copies must be a positive integer."}`,
			},
		},
		{
			name: "err. duplicate",
			body: `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","totalCopies":2}`,
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().AddBook(gomock.Any(), gomock.Any()).Return(model.Book{}, errs.ErrDuplicateISBN)
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"success":false,"reason":"DUPLICATE_ISBN","message":"A book with this ISBN already exists."}`,
			},
		},
	})
}

func TestHandler_GetLateFee(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.GET("/patrons/:patronId/fees/:bookId", h.GetLateFee) }

	run(t, http.MethodGet, "/patrons/123456/fees/2", register, []testCase{
		{
			name: "ok",
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().AssessLateFee(gomock.Any(), "123456", 2).Return(model.LateFee{
					PatronID:    "123456",
					BookID:      2,
					Title:       "1984",
					FeeAmount:   decimal.RequireFromString("6.50"),
					DaysOverdue: 10,
					Status:      model.FeeOverdue,
				}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"success":true,"message":"Overdue","data":{"patronId":"123456","bookId":2,"title":"1984","feeAmount":"6.5","daysOverdue":10,"status":"OVERDUE"}}`,
			},
		},
	})
}

func TestHandler_GetBooks(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.GET("/books", h.GetBooks) }

	run(t, http.MethodGet, "/books?page=1&size=1", register, []testCase{
		{
			name: "ok",
			mockBehavior: func(m mocks) {
				m.circulation.EXPECT().ListBooks(gomock.Any(), 1, 1).Return(model.ListBooks{
					Paging: model.Paging{Page: 1, PageSize: 1, TotalElements: 3},
					Items:  []model.Book{{ID: 3, Title: "1984", Author: "George Orwell", ISBN: "9780451524935", TotalCopies: 1, AvailableCopies: 0}},
				}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":1,"totalElements":3,"items":[{"id":3,"title":"1984","author":"George Orwell","isbn":"9780451524935","totalCopies":1,"availableCopies":0}]}`,
			},
		},
	})

	run(t, http.MethodGet, "/books?page=x", register, []testCase{
		{
			name:         "err. page",
			mockBehavior: func(m mocks) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
	})
}

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()
	register := func(e *echo.Echo, h *handler.Handler) { e.GET("/stats", h.GetStats) }

	run(t, http.MethodGet, "/stats?patronId=123456", register, []testCase{
		{
			name: "ok",
			mockBehavior: func(m mocks) {
				m.stats.EXPECT().Stats(gomock.Any(), "123456").Return([]model.PatronStats{{
					PatronID:     "123456",
					Borrowed:     2,
					Returned:     1,
					FeesPaid:     decimal.RequireFromString("3.5"),
					FeesRefunded: decimal.Zero,
				}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"patronId":"123456","borrowed":2,"returned":1,"feesPaid":"3.5","feesRefunded":"0"}]`,
			},
		},
	})
}

func TestHandler_Router(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	circulation := service_mocks.NewMockCirculationService(c)
	h := handler.New(circulation, service_mocks.NewMockSettlementService(c), service_mocks.NewMockStatsService(c), nil, zap.NewExample())
	e := h.NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	circulation.EXPECT().PatronStatus(gomock.Any(), "000001").Return(model.PatronStatus{}, errs.ErrInvalidPatron)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/patrons/000001/status", http.NoBody))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/koboledger/kobo/internal/apperrors"
	"github.com/koboledger/kobo/internal/core/domain"
	portssvc "github.com/koboledger/kobo/internal/core/ports/services"
	"github.com/koboledger/kobo/internal/dto"
	"github.com/koboledger/kobo/internal/handlers"
	"github.com/koboledger/kobo/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Post(ctx context.Context, p domain.Principal, branchID string, code domain.TrxCode, legs []domain.Leg) (string, error) {
	args := m.Called(ctx, p, branchID, code, legs)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) PostJournal(ctx context.Context, p domain.Principal, branchID string, req dto.PostJournalRequest) (string, error) {
	args := m.Called(ctx, p, branchID, req)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) Balance(ctx context.Context, p domain.Principal, branchID, glNo, acNo string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, p, branchID, glNo, acNo, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) Statement(ctx context.Context, p domain.Principal, branchID string, req dto.StatementRequest) (*domain.Statement, error) {
	args := m.Called(ctx, p, branchID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statement), args.Error(1)
}

func (m *MockLedgerService) Reverse(ctx context.Context, p domain.Principal, branchID, trxNo string) error {
	args := m.Called(ctx, p, branchID, trxNo)
	return args.Error(0)
}

func (m *MockLedgerService) GetPostings(ctx context.Context, p domain.Principal, branchID, trxNo string) ([]domain.Posting, error) {
	args := m.Called(ctx, p, branchID, trxNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
	branchID          string
}

func (suite *LedgerHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	claims := middleware.PrincipalClaims{
		BranchID: suite.branchID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kobo-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.branchID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockLedgerService = new(MockLedgerService)

	branch := suite.router.Group("/api/v1/branches/:branchID")
	handlers.RegisterLedgerRoutes(branch, suite.mockLedgerService)
}

func (suite *LedgerHandlerTestSuite) TestPostJournal_Success() {
	userID := uuid.NewString()
	appDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	body := dto.PostJournalRequest{
		Legs: []dto.JournalLegRequest{
			{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-500), Description: "till transfer", AppDate: appDate},
			{GLNo: "20100", AcNo: "00042", Amount: decimal.NewFromInt(500), Description: "till transfer", AppDate: appDate},
		},
	}

	suite.mockLedgerService.On("PostJournal",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(p domain.Principal) bool {
			return p.UserID == userID && p.BranchID == suite.branchID && p.Role == domain.RoleTeller
		}),
		suite.branchID,
		mock.MatchedBy(func(req dto.PostJournalRequest) bool {
			return len(req.Legs) == 2
		}),
	).Return("GL0000031", nil).Once()

	payload, _ := json.Marshal(body)
	url := fmt.Sprintf("/api/v1/branches/%s/ledger/journals", suite.branchID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, domain.RoleTeller))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.PostingResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("GL0000031", resp.TrxNo)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPostJournal_UnbalancedMapsTo400() {
	userID := uuid.NewString()
	appDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	body := dto.PostJournalRequest{
		Legs: []dto.JournalLegRequest{
			{GLNo: "10400", AcNo: "00001", Amount: decimal.NewFromInt(-500), Description: "till transfer", AppDate: appDate},
			{GLNo: "20100", AcNo: "00042", Amount: decimal.NewFromInt(400), Description: "till transfer", AppDate: appDate},
		},
	}

	suite.mockLedgerService.On("PostJournal",
		mock.AnythingOfType("*context.valueCtx"),
		mock.AnythingOfType("domain.Principal"),
		suite.branchID,
		mock.AnythingOfType("dto.PostJournalRequest"),
	).Return("", fmt.Errorf("legs sum to -100: %w", apperrors.ErrUnbalancedPosting)).Once()

	payload, _ := json.Marshal(body)
	url := fmt.Sprintf("/api/v1/branches/%s/ledger/journals", suite.branchID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, domain.RoleTeller))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *LedgerHandlerTestSuite) TestPostJournal_MissingToken() {
	url := fmt.Sprintf("/api/v1/branches/%s/ledger/journals", suite.branchID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{}`)))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "PostJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestBalance_Success() {
	userID := uuid.NewString()

	suite.mockLedgerService.On("Balance",
		mock.AnythingOfType("*context.valueCtx"),
		mock.AnythingOfType("domain.Principal"),
		suite.branchID,
		"20100",
		"00042",
		mock.MatchedBy(func(asOf time.Time) bool { return asOf.IsZero() }),
	).Return(decimal.NewFromInt(1250), nil).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/ledger/balance?glNo=20100&acNo=00042", suite.branchID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, domain.RoleTeller))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("1250", resp["balance"])
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestBalance_MissingGL() {
	userID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/branches/%s/ledger/balance", suite.branchID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, domain.RoleTeller))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Balance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestReverse_NotFoundMapsTo404() {
	userID := uuid.NewString()
	trxNo := "DP0000099"

	suite.mockLedgerService.On("Reverse",
		mock.AnythingOfType("*context.valueCtx"),
		mock.AnythingOfType("domain.Principal"),
		suite.branchID,
		trxNo,
	).Return(fmt.Errorf("transaction %s: %w", trxNo, apperrors.ErrNotFound)).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/ledger/postings/%s/reverse", suite.branchID, trxNo)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID, domain.RoleManager))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestLedgerHandler(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

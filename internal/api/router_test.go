package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/pet-game/internal/config"
	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/events"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
	"github.com/wfunc/pet-game/internal/service"
	"github.com/wfunc/pet-game/internal/utils"
	"github.com/wfunc/pet-game/internal/websocket"
)

var unit = pet.TokenUnit(6)

// RouterTestSuite HTTP接口测试套件
type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	clock  *clock.Mock
	jwt    *utils.JWTManager
	hub    *websocket.Hub
	router *Router
	cancel context.CancelFunc
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(db.AutoMigrate(models.All()...))
	suite.db = db

	suite.clock = clock.NewMock()
	suite.clock.Set(time.Unix(1_700_000_000, 0))
	suite.jwt = utils.NewJWTManager("test-secret", "pet-game", time.Hour, suite.clock)

	suite.hub = websocket.NewHub(config.WebSocketConfig{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	go suite.hub.Run(ctx)

	services, err := service.NewServices(db, pet.DefaultParams(), suite.clock, events.Multi{suite.hub}, zap.NewNop())
	suite.Require().NoError(err)
	suite.router = NewRouter(db, services, suite.hub, suite.jwt, zap.NewNop())
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.cancel()
	if sqlDB, err := suite.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (suite *RouterTestSuite) token(owner, role string) string {
	token, err := suite.jwt.GenerateToken(owner, role)
	suite.Require().NoError(err)
	return token
}

// do 发送请求并把 data 字段解到 out
func (suite *RouterTestSuite) do(method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.GetEngine().ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		var resp struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		suite.True(resp.Success)
		suite.Require().NoError(json.Unmarshal(resp.Data, out))
	}
	return w
}

func (suite *RouterTestSuite) errorCode(w *httptest.ResponseRecorder) apperrors.ErrorCode {
	var resp apperrors.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.False(resp.Success)
	suite.Require().NotNil(resp.Error)
	return resp.Error.Code
}

func (suite *RouterTestSuite) createPet(owner, petID string) {
	w := suite.do(http.MethodPost, "/api/v1/pets", suite.token(owner, utils.RolePlayer), gin.H{"pet_id": petID}, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *RouterTestSuite) grant(owner string, amount int64) {
	w := suite.do(http.MethodPost, "/api/v1/admin/grant", suite.token("root", utils.RoleAdmin),
		gin.H{"owner": owner, "amount": amount}, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *RouterTestSuite) TestHealth() {
	var body map[string]interface{}
	w := suite.do(http.MethodGet, "/health", "", nil, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("healthy", body["status"])
}

func (suite *RouterTestSuite) TestUnauthenticated() {
	w := suite.do(http.MethodGet, "/api/v1/pets", "", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal(apperrors.ErrAuthentication, suite.errorCode(w))
}

func (suite *RouterTestSuite) TestNoRoute() {
	w := suite.do(http.MethodGet, "/nowhere", "", nil, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RouterTestSuite) TestCreateAndGetPet() {
	alice := suite.token("alice", utils.RolePlayer)

	var view service.PetView
	w := suite.do(http.MethodPost, "/api/v1/pets", alice, gin.H{"pet_id": "mint-1"}, &view)
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("alice", view.Owner)
	suite.Equal(pet.Stat(100), view.State.Energy)

	w = suite.do(http.MethodPost, "/api/v1/pets", alice, gin.H{"pet_id": "mint-1"}, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apperrors.ErrPetExists, suite.errorCode(w))

	w = suite.do(http.MethodPost, "/api/v1/pets", alice, gin.H{}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apperrors.ErrInvalidParam, suite.errorCode(w))

	suite.clock.Add(2 * time.Hour)
	w = suite.do(http.MethodGet, "/api/v1/pets/mint-1", alice, nil, &view)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(2, view.Intervals)
	suite.Equal(pet.Stat(10), view.State.Hunger)

	w = suite.do(http.MethodGet, "/api/v1/pets/ghost", alice, nil, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(apperrors.ErrPetNotFound, suite.errorCode(w))

	var list struct {
		Items []service.PetView `json:"items"`
		Total int64             `json:"total"`
	}
	w = suite.do(http.MethodGet, "/api/v1/pets", alice, nil, &list)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(1), list.Total)
}

func (suite *RouterTestSuite) TestInteractFlow() {
	suite.createPet("alice", "mint-1")
	alice := suite.token("alice", utils.RolePlayer)

	// 没有代币
	w := suite.do(http.MethodPost, "/api/v1/pets/mint-1/feed", alice, nil, nil)
	suite.Equal(http.StatusPaymentRequired, w.Code)
	suite.Equal(apperrors.ErrInsufficientTokens, suite.errorCode(w))

	suite.grant("alice", 20*unit)

	var result service.InteractResult
	w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/feed", alice, nil, &result)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("feed", result.Event.Name)
	suite.Equal(10*unit, result.Balance)
	suite.Equal(pet.SettleDebit, result.Settlement.Direction)

	w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/interact", alice, gin.H{"action": "Clean"}, &result)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(15*unit, result.Balance)

	var balance service.WalletSummary
	w = suite.do(http.MethodGet, "/api/v1/wallet/balance", alice, nil, &balance)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(15*unit, balance.Balance)
	suite.Equal(10*unit, balance.TotalBurned)
	suite.Equal(25*unit, balance.TotalMinted)
	suite.Equal(5*unit, balance.TotalRewarded)
	suite.Equal(20*unit, balance.TotalGranted)

	var txs struct {
		Items []models.Transaction `json:"items"`
		Total int64                `json:"total"`
	}
	w = suite.do(http.MethodGet, "/api/v1/wallet/transactions", alice, nil, &txs)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(3), txs.Total)

	var record models.Transaction
	orderNo := txs.Items[0].OrderNo
	w = suite.do(http.MethodGet, "/api/v1/wallet/transactions/"+orderNo, alice, nil, &record)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(models.TxTypeMint, record.Type)

	// 他人的流水按不存在处理
	w = suite.do(http.MethodGet, "/api/v1/wallet/transactions/"+orderNo, suite.token("bob", utils.RolePlayer), nil, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	var ledger struct {
		Items []models.Transaction `json:"items"`
		Total int64                `json:"total"`
	}
	w = suite.do(http.MethodGet, "/api/v1/pets/mint-1/transactions", alice, nil, &ledger)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Require().Len(ledger.Items, 2)
	suite.Equal(models.TxTypeBurn, ledger.Items[0].Type)
	suite.Equal(models.TxTypeMint, ledger.Items[1].Type)

	w = suite.do(http.MethodGet, "/api/v1/pets/mint-1/transactions", suite.token("bob", utils.RolePlayer), nil, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	var history struct {
		Items []models.PetEvent `json:"items"`
		Total int64             `json:"total"`
	}
	w = suite.do(http.MethodGet, "/api/v1/pets/mint-1/events", alice, nil, &history)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(2), history.Total)
}

func (suite *RouterTestSuite) TestInteractErrors() {
	suite.createPet("alice", "mint-1")
	suite.grant("alice", 100*unit)

	mallory := suite.token("mallory", utils.RolePlayer)
	w := suite.do(http.MethodPost, "/api/v1/pets/mint-1/train", mallory, nil, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apperrors.ErrPetNotOwner, suite.errorCode(w))

	alice := suite.token("alice", utils.RolePlayer)
	w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/fight", alice, nil, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apperrors.ErrUnsupportedInteraction, suite.errorCode(w))

	w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/interact", alice, gin.H{"action": "dance"}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apperrors.ErrUnsupportedInteraction, suite.errorCode(w))

	// 训练五次后能量耗尽
	for i := 0; i < 5; i++ {
		w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/train", alice, nil, nil)
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	}
	w = suite.do(http.MethodPost, "/api/v1/pets/mint-1/train", alice, nil, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apperrors.ErrPetTired, suite.errorCode(w))
}

func (suite *RouterTestSuite) TestCollectibles() {
	alice := suite.token("alice", utils.RolePlayer)

	var item models.Collectible
	w := suite.do(http.MethodPost, "/api/v1/collectibles/skins", alice,
		gin.H{"seed": "s1", "variant_id": "v1", "tier": "rare"}, &item)
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(models.CollectibleSkin, item.Kind)

	w = suite.do(http.MethodPost, "/api/v1/collectibles/skins", alice,
		gin.H{"seed": "s1", "variant_id": "v2"}, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal(apperrors.ErrCollectibleExists, suite.errorCode(w))

	w = suite.do(http.MethodPost, "/api/v1/collectibles/backgrounds", alice,
		gin.H{"seed": "s1", "bg_id": "forest"}, &item)
	suite.Equal(http.StatusCreated, w.Code)

	var list struct {
		Items []models.Collectible `json:"items"`
		Total int64                `json:"total"`
	}
	w = suite.do(http.MethodGet, "/api/v1/collectibles?kind=background", alice, nil, &list)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(1), list.Total)
	suite.Equal("forest", list.Items[0].ItemID)
}

func (suite *RouterTestSuite) TestAdmin() {
	player := suite.token("alice", utils.RolePlayer)
	w := suite.do(http.MethodPost, "/api/v1/admin/grant", player, gin.H{"owner": "alice", "amount": 1}, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	admin := suite.token("root", utils.RoleAdmin)
	w = suite.do(http.MethodPost, "/api/v1/admin/grant", admin, gin.H{"owner": "alice", "amount": 0}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	var params ParamsResponse
	w = suite.do(http.MethodGet, "/api/v1/admin/params", admin, nil, &params)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(3600), params.SecondsPerDecay)
	suite.Equal(15*unit, params.CostTrain)
}

func (suite *RouterTestSuite) TestWebSocketReceivesEvents() {
	suite.createPet("alice", "mint-1")
	alice := suite.token("alice", utils.RolePlayer)

	srv := httptest.NewServer(suite.router.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + alice
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Eventually(func() bool { return suite.hub.IsOnline("alice") }, time.Second, 10*time.Millisecond)

	w := suite.do(http.MethodPost, "/api/v1/pets/mint-1/clean", alice, nil, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg websocket.Message
		suite.Require().NoError(conn.ReadJSON(&msg))
		if msg.Type != websocket.MessageTypePetInteracted {
			continue
		}
		var e pet.Event
		suite.Require().NoError(json.Unmarshal(msg.Data, &e))
		suite.Equal("mint-1", e.PetID)
		suite.Equal("clean", e.Name)
		return
	}
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

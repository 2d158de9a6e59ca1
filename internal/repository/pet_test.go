package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	apperrors "github.com/wfunc/pet-game/internal/errors"
	"github.com/wfunc/pet-game/internal/game/pet"
	"github.com/wfunc/pet-game/internal/models"
)

// PetRepositoryTestSuite 宠物仓储测试套件
type PetRepositoryTestSuite struct {
	suite.Suite
	db        *gorm.DB
	petRepo   PetRepository
	eventRepo PetEventRepository
}

func (suite *PetRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.petRepo = NewPetRepository(suite.db)
	suite.eventRepo = NewPetEventRepository(suite.db)
}

func (suite *PetRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

func (suite *PetRepositoryTestSuite) TestCreateAndFind() {
	ctx := context.Background()
	p := CreateTestPet("mint-1", "alice", 1000)

	suite.Require().NoError(suite.petRepo.Create(ctx, p))
	assert.NotZero(suite.T(), p.ID)

	found, err := suite.petRepo.FindByPetID(ctx, "mint-1")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "alice", found.Owner)
	assert.Equal(suite.T(), pet.State{Strength: 50, Happiness: 100, Energy: 100, LastObservedAt: 1000}, found.State())
	assert.Zero(suite.T(), found.PendingRewards)
}

func (suite *PetRepositoryTestSuite) TestCreateDuplicate() {
	ctx := context.Background()
	suite.Require().NoError(suite.petRepo.Create(ctx, CreateTestPet("mint-1", "alice", 1000)))

	err := suite.petRepo.Create(ctx, CreateTestPet("mint-1", "bob", 2000))
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrPetExists))

	// 原宠物不受影响
	found, err := suite.petRepo.FindByPetID(ctx, "mint-1")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "alice", found.Owner)
}

func (suite *PetRepositoryTestSuite) TestFindNotFound() {
	_, err := suite.petRepo.FindByPetID(context.Background(), "missing")
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrPetNotFound))

	_, err = suite.petRepo.LockForUpdate(context.Background(), "missing")
	assert.True(suite.T(), apperrors.Is(err, apperrors.ErrPetNotFound))
}

func (suite *PetRepositoryTestSuite) TestSaveStateZeroValues() {
	ctx := context.Background()
	suite.Require().NoError(suite.petRepo.Create(ctx, CreateTestPet("mint-1", "alice", 1000)))

	// 零值也必须写入
	next := pet.State{Hunger: 100, Strength: 0, Happiness: 0, Energy: 0, LastObservedAt: 5000}
	suite.Require().NoError(suite.petRepo.SaveState(ctx, "mint-1", next))

	found, err := suite.petRepo.LockForUpdate(ctx, "mint-1")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), next, found.State())
}

func (suite *PetRepositoryTestSuite) TestListByOwner() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.petRepo.Create(ctx, CreateTestPet(fmt.Sprintf("a-%d", i), "alice", 1000)))
	}
	suite.Require().NoError(suite.petRepo.Create(ctx, CreateTestPet("b-0", "bob", 1000)))

	page := NewPagination(1, 2)
	pets, err := suite.petRepo.ListByOwner(ctx, "alice", page)
	suite.Require().NoError(err)
	assert.Len(suite.T(), pets, 2)
	assert.Equal(suite.T(), int64(3), page.Total)
}

func (suite *PetRepositoryTestSuite) TestEventsNewestFirst() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		suite.Require().NoError(suite.eventRepo.Create(ctx, &models.PetEvent{
			EventID:    fmt.Sprintf("ev-%d", i),
			PetID:      "mint-1",
			Owner:      "alice",
			Action:     "feed",
			OccurredAt: int64(1000 + i),
		}))
	}

	page := NewPagination(1, 3)
	events, err := suite.eventRepo.ListByPet(ctx, "mint-1", page)
	suite.Require().NoError(err)
	suite.Require().Len(events, 3)
	assert.Equal(suite.T(), int64(5), page.Total)
	assert.Equal(suite.T(), "ev-4", events[0].EventID)
	assert.Equal(suite.T(), "ev-2", events[2].EventID)
}

func TestPetRepositorySuite(t *testing.T) {
	suite.Run(t, new(PetRepositoryTestSuite))
}

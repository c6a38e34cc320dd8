package ledgerrepo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	postgres_adapter "supplychain/internal/adapters/out/postgres"
	"supplychain/internal/adapters/out/postgres/ledgerrepo"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type LedgerRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	ledger    *ledgerrepo.GormLedger
}

func (suite *LedgerRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(dsn)
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *LedgerRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE ledger_records, ledger_orders").Error)
	suite.ledger = ledgerrepo.NewGormLedger(suite.db)
}

func (suite *LedgerRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *LedgerRepositoryIntegrationTestSuite) createOrder() *order.Order {
	parties, err := order.NewParties("acme", "globex", "")
	suite.Require().NoError(err)
	commitment := services.NewCommitmentVerifier().Commit("500", "n-1")
	terms, err := order.NewTerms(25, "enc", commitment, kernel.Commitment{})
	suite.Require().NoError(err)
	destination, err := kernel.NewLocation(35.68, 139.69)
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), parties, terms, destination, time.Now())
	suite.Require().NoError(err)
	return o
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestRecordLifecycle() {
	ctx := context.Background()
	o := suite.createOrder()

	receipt, err := suite.ledger.RecordCreate(ctx, o)
	suite.Require().NoError(err)
	suite.Equal(ledgerrepo.Backend, receipt.Backend)
	suite.NotEmpty(receipt.Reference)

	_, err = suite.ledger.RecordApprove(ctx, o.ID(), services.Proof{Value: "500", Nonce: "n-1"})
	suite.Require().NoError(err)
	_, err = suite.ledger.RecordDeliver(ctx, o.ID(), o.Destination())
	suite.Require().NoError(err)
	_, err = suite.ledger.RecordPay(ctx, o.ID())
	suite.Require().NoError(err)

	status, err := suite.ledger.MirroredStatus(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Paid, status)

	history, err := suite.ledger.History(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 4)
	suite.Equal([]string{"create", "approve", "deliver", "pay"}, []string{
		history[0].Transition, history[1].Transition, history[2].Transition, history[3].Transition,
	})

	var approval map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(history[1].Payload), &approval))
	suite.Contains(approval, "nonceDigest")
	suite.NotContains(approval, "value")
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestRecordCreateIsIdempotent() {
	ctx := context.Background()
	o := suite.createOrder()

	_, err := suite.ledger.RecordCreate(ctx, o)
	suite.Require().NoError(err)
	_, err = suite.ledger.RecordCreate(ctx, o)
	suite.Require().NoError(err)

	var count int64
	suite.Require().NoError(suite.db.Model(&ledgerrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestRecordForUnknownOrderFails() {
	ctx := context.Background()

	_, err := suite.ledger.RecordPay(ctx, kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&ledgerrepo.RecordDTO{}).Count(&count).Error)
	suite.Zero(count, "the record is rolled back with the failed update")
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestRecordCancel() {
	ctx := context.Background()
	o := suite.createOrder()
	_, err := suite.ledger.RecordCreate(ctx, o)
	suite.Require().NoError(err)

	_, err = suite.ledger.RecordCancel(ctx, o.ID(), "supplier out of stock")
	suite.Require().NoError(err)

	status, err := suite.ledger.MirroredStatus(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, status)
}

func TestLedgerRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
	suite.Run(t, new(LedgerRepositoryIntegrationTestSuite))
}

package store_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/hypertune/hypertune/internal/config"
	st "github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM trials;")
		gormDB.Exec("DELETE FROM train_jobs;")
	})

	Context("transaction", func() {
		It("commits an inserted trial", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			trial, err := store.Trial().Create(ctx, uuid.New(), uuid.New(), tuning.Params{"lr": 0.1})
			Expect(err).To(BeNil())

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())

			got, err := store.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.TrialStatusRunning))
		})

		It("rolls back an inserted trial", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			trial, err := store.Trial().Create(ctx, uuid.New(), uuid.New(), tuning.Params{"lr": 0.1})
			Expect(err).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			_, err = store.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(Equal(st.ErrRecordNotFound))
		})

		It("keeps reads and writes of one transaction on the same connection", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			trainJob, err := store.TrainJob().Create(ctx, model.TrainJob{
				ID:              uuid.New(),
				TrainDatasetURI: "file:///train.csv",
				TestDatasetURI:  "file:///test.csv",
				BudgetKind:      "trial_count",
				BudgetAmount:    3,
				Status:          model.TrainJobStatusRunning,
			})
			Expect(err).To(BeNil())

			got, err := store.TrainJob().Get(ctx, trainJob.ID)
			Expect(err).To(BeNil())
			Expect(got.ID).To(Equal(trainJob.ID))

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())
		})
	})
})

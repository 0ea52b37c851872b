package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/hypertune/hypertune/internal/config"
	st "github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
)

const (
	insertTrialStm = "INSERT INTO trials (id, train_job_id, tuned_model_id, hyperparameters, status) VALUES ('%s', '%s', '%s', '{\"lr\": 0.1}', '%s');"
)

var _ = Describe("trial store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = st.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM trials;")
	})

	Context("create", func() {
		It("creates a running trial with its hyperparameters", func() {
			trial, err := s.Trial().Create(context.TODO(), uuid.New(), uuid.New(), tuning.Params{"lr": 0.01, "units": float64(32)})
			Expect(err).To(BeNil())
			Expect(trial.Status).To(Equal(model.TrialStatusRunning))
			Expect(trial.Score).To(BeNil())
			Expect(trial.CompletedAt).To(BeNil())

			got, err := s.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(BeNil())
			Expect(got.Hyperparameters.Data).To(HaveKeyWithValue("lr", 0.01))
		})
	})

	Context("finalize", func() {
		It("marks a running trial complete", func() {
			trial, err := s.Trial().Create(context.TODO(), uuid.New(), uuid.New(), tuning.Params{"lr": 0.01})
			Expect(err).To(BeNil())

			err = s.Trial().MarkComplete(context.TODO(), trial.ID, 0.87, []byte("weights"))
			Expect(err).To(BeNil())

			got, err := s.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.TrialStatusComplete))
			Expect(*got.Score).To(Equal(0.87))
			Expect(got.Parameters).To(Equal([]byte("weights")))
			Expect(got.CompletedAt).ToNot(BeNil())
		})

		It("marks a running trial errored", func() {
			trial, err := s.Trial().Create(context.TODO(), uuid.New(), uuid.New(), tuning.Params{"lr": 0.01})
			Expect(err).To(BeNil())

			err = s.Trial().MarkErrored(context.TODO(), trial.ID)
			Expect(err).To(BeNil())

			got, err := s.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.TrialStatusErrored))
			Expect(got.Score).To(BeNil())
		})

		It("refuses to finalize twice", func() {
			trial, err := s.Trial().Create(context.TODO(), uuid.New(), uuid.New(), tuning.Params{"lr": 0.01})
			Expect(err).To(BeNil())

			err = s.Trial().MarkComplete(context.TODO(), trial.ID, 0.87, []byte("weights"))
			Expect(err).To(BeNil())

			err = s.Trial().MarkComplete(context.TODO(), trial.ID, 0.99, []byte("other"))
			Expect(err).To(Equal(st.ErrTrialFinalized))

			err = s.Trial().MarkErrored(context.TODO(), trial.ID)
			Expect(err).To(Equal(st.ErrTrialFinalized))

			// The first outcome wins.
			got, err := s.Trial().Get(context.TODO(), trial.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.TrialStatusComplete))
			Expect(*got.Score).To(Equal(0.87))
			Expect(got.Parameters).To(Equal([]byte("weights")))
		})

		It("fails to finalize a trial that does not exist", func() {
			err := s.Trial().MarkComplete(context.TODO(), uuid.New(), 0.5, nil)
			Expect(err).To(Equal(st.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("filters by train job, model and status", func() {
			trainJobID := uuid.NewString()
			modelID := uuid.NewString()
			otherModelID := uuid.NewString()

			tx := gormdb.Exec(fmt.Sprintf(insertTrialStm, uuid.NewString(), trainJobID, modelID, model.TrialStatusComplete))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertTrialStm, uuid.NewString(), trainJobID, modelID, model.TrialStatusErrored))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertTrialStm, uuid.NewString(), trainJobID, otherModelID, model.TrialStatusComplete))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertTrialStm, uuid.NewString(), uuid.NewString(), modelID, model.TrialStatusComplete))
			Expect(tx.Error).To(BeNil())

			trials, err := s.Trial().List(context.TODO(), st.NewTrialQueryFilter().ByTrainJobID(trainJobID), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(3))

			trials, err = s.Trial().List(context.TODO(),
				st.NewTrialQueryFilter().ByTrainJobID(trainJobID).ByStatus(model.TrialStatusComplete), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(2))

			trials, err = s.Trial().List(context.TODO(),
				st.NewTrialQueryFilter().ByTrainJobID(trainJobID).ByTunedModelID(modelID).ByStatus(model.TrialStatusComplete), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(1))
		})

		It("orders by completion time", func() {
			modelID := uuid.New()
			trainJobID := uuid.New()

			first, err := s.Trial().Create(context.TODO(), modelID, trainJobID, tuning.Params{"lr": 0.01})
			Expect(err).To(BeNil())
			second, err := s.Trial().Create(context.TODO(), modelID, trainJobID, tuning.Params{"lr": 0.02})
			Expect(err).To(BeNil())

			Expect(s.Trial().MarkComplete(context.TODO(), second.ID, 0.2, nil)).To(BeNil())
			Expect(s.Trial().MarkComplete(context.TODO(), first.ID, 0.1, nil)).To(BeNil())

			trials, err := s.Trial().List(context.TODO(),
				st.NewTrialQueryFilter().ByStatus(model.TrialStatusComplete),
				st.NewTrialQueryOptions().WithSortOrder(st.SortByCompletedTime))
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(2))
			Expect(trials[0].ID).To(Equal(second.ID))
			Expect(trials[1].ID).To(Equal(first.ID))
		})
	})
})

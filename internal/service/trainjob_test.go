package service_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/config"
	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
)

const (
	insertDatasetStm = "INSERT INTO datasets (id, name, uri, size_bytes) VALUES ('%s', '%s', '%s', 1024);"
)

var _ = Describe("train job service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.TrainJobService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		svc = service.NewTrainJobService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM train_jobs;")
		gormdb.Exec("DELETE FROM datasets;")
	})

	insertDataset := func(uri string) uuid.UUID {
		id := uuid.New()
		tx := gormdb.Exec(fmt.Sprintf(insertDatasetStm, id, "train.csv", uri))
		Expect(tx.Error).To(BeNil())
		return id
	}

	Context("create", func() {
		It("freezes the dataset uris onto the job", func() {
			trainID := insertDataset("s3://hypertune-datasets/train.csv")
			testID := insertDataset("s3://hypertune-datasets/test.csv")

			trainJob, err := svc.CreateTrainJob(context.TODO(), &api.TrainJobCreate{
				TrainDatasetId: trainID,
				TestDatasetId:  testID,
				BudgetKind:     "trial_count",
				BudgetAmount:   5,
			})
			Expect(err).To(BeNil())
			Expect(trainJob.TrainDatasetURI).To(Equal("s3://hypertune-datasets/train.csv"))
			Expect(trainJob.TestDatasetURI).To(Equal("s3://hypertune-datasets/test.csv"))
			Expect(trainJob.Status).To(Equal(model.TrainJobStatusRunning))

			got, err := svc.GetTrainJob(context.TODO(), trainJob.ID)
			Expect(err).To(BeNil())
			Expect(got.BudgetAmount).To(Equal(float64(5)))
		})

		It("rejects an unknown dataset", func() {
			trainID := insertDataset("s3://hypertune-datasets/train.csv")

			_, err := svc.CreateTrainJob(context.TODO(), &api.TrainJobCreate{
				TrainDatasetId: trainID,
				TestDatasetId:  uuid.New(),
				BudgetKind:     "trial_count",
				BudgetAmount:   5,
			})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})

		It("rejects an unknown budget kind", func() {
			trainID := insertDataset("s3://hypertune-datasets/train.csv")
			testID := insertDataset("s3://hypertune-datasets/test.csv")

			_, err := svc.CreateTrainJob(context.TODO(), &api.TrainJobCreate{
				TrainDatasetId: trainID,
				TestDatasetId:  testID,
				BudgetKind:     "gpu_seconds",
				BudgetAmount:   5,
			})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})
	})

	Context("stop", func() {
		It("marks a running job stopped", func() {
			trainID := insertDataset("s3://hypertune-datasets/train.csv")
			testID := insertDataset("s3://hypertune-datasets/test.csv")

			trainJob, err := svc.CreateTrainJob(context.TODO(), &api.TrainJobCreate{
				TrainDatasetId: trainID,
				TestDatasetId:  testID,
				BudgetKind:     "trial_count",
				BudgetAmount:   5,
			})
			Expect(err).To(BeNil())

			stopped, err := svc.StopTrainJob(context.TODO(), trainJob.ID)
			Expect(err).To(BeNil())
			Expect(stopped.Status).To(Equal(model.TrainJobStatusStopped))
		})

		It("fails for an unknown job", func() {
			_, err := svc.StopTrainJob(context.TODO(), uuid.New())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})
})

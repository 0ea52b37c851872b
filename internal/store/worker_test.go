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
)

var _ = Describe("worker store", Ordered, func() {
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
		gormdb.Exec("DELETE FROM workers;")
	})

	newWorker := func() *model.Worker {
		worker, err := s.Worker().Create(context.TODO(), model.Worker{
			ID:           uuid.New(),
			TrainJobID:   uuid.New(),
			TunedModelID: uuid.New(),
			Status:       model.WorkerStatusIdle,
		})
		Expect(err).To(BeNil())
		return worker
	}

	Context("status", func() {
		It("transitions idle to running to stopped", func() {
			worker := newWorker()

			_, err := s.Worker().UpdateStatus(context.TODO(), worker.ID, model.WorkerStatusRunning)
			Expect(err).To(BeNil())

			got, err := s.Worker().Get(context.TODO(), worker.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.WorkerStatusRunning))

			_, err = s.Worker().UpdateStatus(context.TODO(), worker.ID, model.WorkerStatusStopped)
			Expect(err).To(BeNil())

			got, err = s.Worker().Get(context.TODO(), worker.ID)
			Expect(err).To(BeNil())
			Expect(got.Status).To(Equal(model.WorkerStatusStopped))
		})

		It("re-marking the current status succeeds", func() {
			worker := newWorker()

			_, err := s.Worker().UpdateStatus(context.TODO(), worker.ID, model.WorkerStatusStopped)
			Expect(err).To(BeNil())
			_, err = s.Worker().UpdateStatus(context.TODO(), worker.ID, model.WorkerStatusStopped)
			Expect(err).To(BeNil())
		})

		It("fails for an unknown worker", func() {
			_, err := s.Worker().UpdateStatus(context.TODO(), uuid.New(), model.WorkerStatusRunning)
			Expect(err).To(Equal(st.ErrRecordNotFound))
		})

		It("counts workers per status", func() {
			newWorker()
			newWorker()
			stopped := newWorker()
			_, err := s.Worker().UpdateStatus(context.TODO(), stopped.ID, model.WorkerStatusStopped)
			Expect(err).To(BeNil())

			count, err := s.Worker().CountByStatus(context.TODO(), model.WorkerStatusIdle)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))

			count, err = s.Worker().CountByStatus(context.TODO(), model.WorkerStatusStopped)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(1)))
		})
	})
})

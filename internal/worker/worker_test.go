package worker_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/hypertune/hypertune/internal/budget"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/config"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
	"github.com/hypertune/hypertune/internal/worker"
)

const fakeKind = "fake"

type fakeCapability struct {
	score    float64
	trainErr error
	// blockTrain makes Train wait for context cancellation before failing,
	// simulating a fitting process interrupted by a supervisor stop.
	blockTrain bool
}

func (f *fakeCapability) Train(ctx context.Context, datasetURI string) error {
	if f.blockTrain {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.trainErr
}

func (f *fakeCapability) Evaluate(ctx context.Context, datasetURI string) (float64, error) {
	return f.score, nil
}

func (f *fakeCapability) DumpParameters() ([]byte, error) {
	return []byte("weights"), nil
}

func (f *fakeCapability) Destroy() error {
	return nil
}

func fakeRegistry(c capability.Capability) *capability.Registry {
	r := capability.NewRegistry()
	r.Register(fakeKind, func(definition []byte, hyperparameters tuning.Params) (capability.Capability, error) {
		return c, nil
	})
	return r
}

func floatPtr(v float64) *float64 { return &v }

var _ = Describe("worker loop", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB

		trainJob   *model.TrainJob
		tunedModel *model.TunedModel
		workerID   uuid.UUID
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		err = s.InitialMigration()
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	seed := func(budgetKind string, budgetAmount float64) {
		var err error
		trainJob, err = s.TrainJob().Create(context.TODO(), model.TrainJob{
			ID:              uuid.New(),
			TrainDatasetURI: "file:///tmp/train.csv",
			TestDatasetURI:  "file:///tmp/test.csv",
			BudgetKind:      budgetKind,
			BudgetAmount:    budgetAmount,
			Status:          model.TrainJobStatusRunning,
		})
		Expect(err).To(BeNil())

		tunedModel, err = s.TunedModel().Create(context.TODO(), model.TunedModel{
			ID:       uuid.New(),
			Name:     uuid.NewString(),
			Kind:     fakeKind,
			Strategy: tuning.StrategyBayes,
			Hyperparameters: model.MakeJSONField(tuning.SpaceSpec{
				"learning_rate": {Type: tuning.KnobFloat, Min: floatPtr(1e-4), Max: floatPtr(1e-1), Log: true},
				"hidden_units":  {Type: tuning.KnobInt, Min: floatPtr(8), Max: floatPtr(64)},
				"batch_size":    {Type: tuning.KnobFixed, Value: float64(32)},
			}),
		})
		Expect(err).To(BeNil())

		workerID = uuid.New()
		_, err = s.Worker().Create(context.TODO(), model.Worker{
			ID:           workerID,
			TrainJobID:   trainJob.ID,
			TunedModelID: tunedModel.ID,
			Status:       model.WorkerStatusIdle,
		})
		Expect(err).To(BeNil())
	}

	AfterEach(func() {
		gormdb.Exec("DELETE FROM trials;")
		gormdb.Exec("DELETE FROM workers;")
		gormdb.Exec("DELETE FROM tuned_models;")
		gormdb.Exec("DELETE FROM train_jobs;")
	})

	Context("trial count budget", func() {
		It("runs exactly as many trials as the budget allows and exits cleanly", func() {
			seed(string(budget.TrialCount), 3)

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.5}), nil).
				WithPollInterval(5 * time.Millisecond)

			err := w.Run(context.TODO())
			Expect(err).To(BeNil())

			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().ByTrainJobID(trainJob.ID.String()), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(3))
			for _, trial := range trials {
				Expect(trial.Status).To(Equal(model.TrialStatusComplete))
				Expect(trial.Score).ToNot(BeNil())
				Expect(*trial.Score).To(Equal(0.5))
				Expect(trial.Parameters).To(Equal([]byte("weights")))
				Expect(trial.CompletedAt).ToNot(BeNil())
			}

			assignment, err := s.Worker().Get(context.TODO(), workerID)
			Expect(err).To(BeNil())
			Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
		})

		It("does not start a trial when the budget is already exhausted", func() {
			seed(string(budget.TrialCount), 0)

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.5}), nil).
				WithPollInterval(5 * time.Millisecond)

			err := w.Run(context.TODO())
			Expect(err).To(BeNil())

			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().ByTrainJobID(trainJob.ID.String()), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(BeEmpty())
		})
	})

	Context("concurrent workers", func() {
		It("overshoots a trial budget of one by at most one trial", func() {
			seed(string(budget.TrialCount), 1)

			secondID := uuid.New()
			_, err := s.Worker().Create(context.TODO(), model.Worker{
				ID:           secondID,
				TrainJobID:   trainJob.ID,
				TunedModelID: tunedModel.ID,
				Status:       model.WorkerStatusIdle,
			})
			Expect(err).To(BeNil())

			first := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.4}), nil).
				WithPollInterval(5 * time.Millisecond)
			second := worker.New(secondID, s, fakeRegistry(&fakeCapability{score: 0.6}), nil).
				WithPollInterval(5 * time.Millisecond)

			done := make(chan error, 2)
			go func() { done <- first.Run(context.TODO()) }()
			go func() { done <- second.Run(context.TODO()) }()

			Eventually(done, "10s").Should(Receive(BeNil()))
			Eventually(done, "10s").Should(Receive(BeNil()))

			// Both may pass the budget check before either trial completes,
			// so the budget of one bounds the outcome at two trials.
			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().
					ByTrainJobID(trainJob.ID.String()).
					ByStatus(model.TrialStatusComplete), nil)
			Expect(err).To(BeNil())
			Expect(len(trials)).To(BeNumerically(">=", 1))
			Expect(len(trials)).To(BeNumerically("<=", 2))

			for _, id := range []uuid.UUID{workerID, secondID} {
				assignment, err := s.Worker().Get(context.TODO(), id)
				Expect(err).To(BeNil())
				Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
			}
		})
	})

	Context("errored trials", func() {
		It("records the error, keeps looping and consumes no budget", func() {
			seed(string(budget.TrialCount), 3)

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{trainErr: errors.New("loss diverged")}), nil).
				WithPollInterval(time.Millisecond)

			ctx, cancel := context.WithCancel(context.TODO())
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			erroredFilter := store.NewTrialQueryFilter().
				ByTrainJobID(trainJob.ID.String()).
				ByStatus(model.TrialStatusErrored)
			Eventually(func() int {
				trials, err := s.Trial().List(context.TODO(), erroredFilter, nil)
				Expect(err).To(BeNil())
				return len(trials)
			}, "5s", "10ms").Should(BeNumerically(">=", 2))

			cancel()
			Eventually(done, "5s").Should(Receive(BeNil()))

			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().
					ByTrainJobID(trainJob.ID.String()).
					ByStatus(model.TrialStatusComplete), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(BeEmpty())

			assignment, err := s.Worker().Get(context.TODO(), workerID)
			Expect(err).To(BeNil())
			Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
		})
	})

	Context("fatal errors", func() {
		It("fails when the worker assignment does not exist", func() {
			w := worker.New(uuid.New(), s, fakeRegistry(&fakeCapability{score: 0.5}), nil)

			err := w.Run(context.TODO())
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, store.ErrRecordNotFound)).To(BeTrue())
		})

		It("fails and still marks the worker stopped when the train job is missing", func() {
			seed(string(budget.TrialCount), 3)
			gormdb.Exec("DELETE FROM train_jobs;")

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.5}), nil)

			err := w.Run(context.TODO())
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, store.ErrRecordNotFound)).To(BeTrue())

			assignment, err := s.Worker().Get(context.TODO(), workerID)
			Expect(err).To(BeNil())
			Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
		})

		It("fails when the model kind has no registered capability", func() {
			seed(string(budget.TrialCount), 3)

			w := worker.New(workerID, s, capability.NewRegistry(), nil).
				WithPollInterval(time.Millisecond)

			ctx, cancel := context.WithCancel(context.TODO())
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			// Instantiation failures are execution failures: the trial errors
			// and the loop keeps going.
			erroredFilter := store.NewTrialQueryFilter().
				ByTrainJobID(trainJob.ID.String()).
				ByStatus(model.TrialStatusErrored)
			Eventually(func() int {
				trials, err := s.Trial().List(context.TODO(), erroredFilter, nil)
				Expect(err).To(BeNil())
				return len(trials)
			}, "5s", "10ms").Should(BeNumerically(">=", 1))

			cancel()
			Eventually(done, "5s").Should(Receive(BeNil()))
		})
	})

	Context("cancellation", func() {
		It("exits cleanly when the context is already cancelled", func() {
			seed(string(budget.TrialCount), 100)

			ctx, cancel := context.WithCancel(context.TODO())
			cancel()

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.5}), nil)
			Expect(w.Run(ctx)).To(BeNil())

			assignment, err := s.Worker().Get(context.TODO(), workerID)
			Expect(err).To(BeNil())
			Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
		})

		It("finalizes the in-flight trial when cancelled mid-trial", func() {
			seed(string(budget.TrialCount), 100)

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{blockTrain: true}), nil).
				WithPollInterval(time.Millisecond)

			ctx, cancel := context.WithCancel(context.TODO())
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			runningFilter := store.NewTrialQueryFilter().
				ByTrainJobID(trainJob.ID.String()).
				ByStatus(model.TrialStatusRunning)
			Eventually(func() int {
				trials, err := s.Trial().List(context.TODO(), runningFilter, nil)
				Expect(err).To(BeNil())
				return len(trials)
			}, "5s", "10ms").Should(BeNumerically(">=", 1))

			cancel()
			Eventually(done, "5s").Should(Receive(BeNil()))

			// The interrupted trial must not be left running.
			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().ByTrainJobID(trainJob.ID.String()), nil)
			Expect(err).To(BeNil())
			Expect(trials).ToNot(BeEmpty())
			for _, trial := range trials {
				Expect(trial.Status).To(Equal(model.TrialStatusErrored))
			}

			assignment, err := s.Worker().Get(context.TODO(), workerID)
			Expect(err).To(BeNil())
			Expect(assignment.Status).To(Equal(model.WorkerStatusStopped))
		})
	})

	Context("proposals", func() {
		It("records in-domain hyperparameters on every trial", func() {
			seed(string(budget.TrialCount), 5)

			w := worker.New(workerID, s, fakeRegistry(&fakeCapability{score: 0.9}), nil).
				WithPollInterval(5 * time.Millisecond)

			Expect(w.Run(context.TODO())).To(BeNil())

			space, err := tuning.NewSpace(tunedModel.Hyperparameters.Data)
			Expect(err).To(BeNil())

			trials, err := s.Trial().List(context.TODO(),
				store.NewTrialQueryFilter().ByTrainJobID(trainJob.ID.String()), nil)
			Expect(err).To(BeNil())
			Expect(trials).To(HaveLen(5))
			for _, trial := range trials {
				Expect(trial.Hyperparameters).ToNot(BeNil())
				Expect(space.Validate(trial.Hyperparameters.Data)).To(BeNil())
			}
		})
	})
})

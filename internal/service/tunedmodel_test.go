package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/capability"
	"github.com/hypertune/hypertune/internal/config"
	"github.com/hypertune/hypertune/internal/service"
	"github.com/hypertune/hypertune/internal/store"
	"github.com/hypertune/hypertune/internal/tuning"
)

var _ = Describe("tuned model service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.TunedModelService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		svc = service.NewTunedModelService(s, capability.Default())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM tuned_models;")
	})

	validCreate := func(name string) *api.TunedModelCreate {
		return &api.TunedModelCreate{
			Name:       name,
			Kind:       capability.CommandKind,
			Strategy:   tuning.StrategyBayes,
			Definition: []byte(`{"command": ["python3", "train.py"]}`),
			Hyperparameters: tuning.SpaceSpec{
				"lr": {Type: tuning.KnobFloat, Min: floatPtr(0.001), Max: floatPtr(0.1)},
			},
		}
	}

	Context("register", func() {
		It("registers a model with a valid space", func() {
			tunedModel, err := svc.RegisterModel(context.TODO(), validCreate("resnet"))
			Expect(err).To(BeNil())
			Expect(tunedModel.Name).To(Equal("resnet"))

			got, err := svc.GetModel(context.TODO(), tunedModel.ID)
			Expect(err).To(BeNil())
			Expect(got.Hyperparameters.Data).To(HaveKey("lr"))
		})

		It("rejects an invalid space", func() {
			resource := validCreate("resnet")
			resource.Hyperparameters = tuning.SpaceSpec{
				"lr": {Type: tuning.KnobFloat, Min: floatPtr(1), Max: floatPtr(0)},
			}

			_, err := svc.RegisterModel(context.TODO(), resource)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("rejects an unknown strategy", func() {
			resource := validCreate("resnet")
			resource.Strategy = "grid"

			_, err := svc.RegisterModel(context.TODO(), resource)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("rejects an unknown capability kind", func() {
			resource := validCreate("resnet")
			resource.Kind = "notebook"

			_, err := svc.RegisterModel(context.TODO(), resource)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("rejects a duplicate name", func() {
			_, err := svc.RegisterModel(context.TODO(), validCreate("resnet"))
			Expect(err).To(BeNil())

			_, err = svc.RegisterModel(context.TODO(), validCreate("resnet"))
			Expect(err).To(BeAssignableToTypeOf(&service.ErrDuplicateResource{}))
		})
	})
})

func floatPtr(v float64) *float64 { return &v }

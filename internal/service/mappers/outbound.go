package mappers

import (
	api "github.com/hypertune/hypertune/api/v1alpha1"
	"github.com/hypertune/hypertune/internal/store/model"
	"github.com/hypertune/hypertune/internal/tuning"
)

func DatasetToApi(d model.Dataset) api.Dataset {
	return api.Dataset{
		Id:        d.ID,
		Name:      d.Name,
		Uri:       d.URI,
		SizeBytes: d.SizeBytes,
		CreatedAt: d.CreatedAt,
	}
}

func DatasetListToApi(datasets []model.Dataset) api.DatasetList {
	out := make(api.DatasetList, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, DatasetToApi(d))
	}
	return out
}

func TunedModelToApi(m model.TunedModel) api.TunedModel {
	out := api.TunedModel{
		Id:        m.ID,
		Name:      m.Name,
		Kind:      m.Kind,
		Strategy:  m.Strategy,
		CreatedAt: m.CreatedAt,
	}
	if m.Hyperparameters != nil {
		out.Hyperparameters = m.Hyperparameters.Data
	}
	return out
}

func TunedModelListToApi(models []model.TunedModel) api.TunedModelList {
	out := make(api.TunedModelList, 0, len(models))
	for _, m := range models {
		out = append(out, TunedModelToApi(m))
	}
	return out
}

func TrainJobToApi(t model.TrainJob) api.TrainJob {
	return api.TrainJob{
		Id:              t.ID,
		TrainDatasetUri: t.TrainDatasetURI,
		TestDatasetUri:  t.TestDatasetURI,
		BudgetKind:      t.BudgetKind,
		BudgetAmount:    t.BudgetAmount,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
	}
}

func TrainJobListToApi(jobs []model.TrainJob) api.TrainJobList {
	out := make(api.TrainJobList, 0, len(jobs))
	for _, t := range jobs {
		out = append(out, TrainJobToApi(t))
	}
	return out
}

func WorkerToApi(w model.Worker) api.Worker {
	return api.Worker{
		Id:           w.ID,
		TrainJobId:   w.TrainJobID,
		TunedModelId: w.TunedModelID,
		Status:       w.Status,
	}
}

func WorkerListToApi(workers []model.Worker) api.WorkerList {
	out := make(api.WorkerList, 0, len(workers))
	for _, w := range workers {
		out = append(out, WorkerToApi(w))
	}
	return out
}

func TrialToApi(t model.Trial) api.Trial {
	out := api.Trial{
		Id:           t.ID,
		TrainJobId:   t.TrainJobID,
		TunedModelId: t.TunedModelID,
		Status:       t.Status,
		Score:        t.Score,
		CompletedAt:  t.CompletedAt,
	}
	if t.Hyperparameters != nil {
		out.Hyperparameters = t.Hyperparameters.Data
	} else {
		out.Hyperparameters = tuning.Params{}
	}
	return out
}

func TrialListToApi(trials []model.Trial) api.TrialList {
	out := make(api.TrialList, 0, len(trials))
	for _, t := range trials {
		out = append(out, TrialToApi(t))
	}
	return out
}

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Summary is a compact view of the pipeline counters for the dev stats endpoint.
type Summary struct {
	Replies      map[string]float64 `json:"replies_by_intent"`
	Extractions  map[string]float64 `json:"extractions_by_outcome"`
	VariantSets  map[string]float64 `json:"variant_sets_by_source"`
	LLMRequests  float64            `json:"llm_requests"`
	LLMErrors    float64            `json:"llm_errors"`
	LLMMeanSecs  float64            `json:"llm_mean_latency_seconds"`
	Deliveries   float64            `json:"deliveries"`
	DeliveryErrs float64            `json:"delivery_errors"`
}

// Summarize reads the pipeline families out of gatherer.
func Summarize(gatherer prometheus.Gatherer) (Summary, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	families, err := gatherer.Gather()
	if err != nil {
		return Summary{}, fmt.Errorf("metrics: gather: %w", err)
	}

	s := Summary{
		Replies:     map[string]float64{},
		Extractions: map[string]float64{},
		VariantSets: map[string]float64{},
	}
	var latencySum float64
	var latencyCount uint64
	for _, family := range families {
		switch family.GetName() {
		case namespace + "_pipeline_replies_total":
			sumByLabel(family, "intent", s.Replies)
		case namespace + "_pipeline_extractions_total":
			sumByLabel(family, "outcome", s.Extractions)
		case namespace + "_pipeline_variant_sets_total":
			sumByLabel(family, "source", s.VariantSets)
		case namespace + "_llm_requests_total":
			for _, metric := range family.GetMetric() {
				v := metric.GetCounter().GetValue()
				s.LLMRequests += v
				if hasLabel(metric, "status", "error") {
					s.LLMErrors += v
				}
			}
		case namespace + "_llm_latency_seconds":
			for _, metric := range family.GetMetric() {
				latencySum += metric.GetHistogram().GetSampleSum()
				latencyCount += metric.GetHistogram().GetSampleCount()
			}
		case namespace + "_pipeline_deliveries_total":
			for _, metric := range family.GetMetric() {
				v := metric.GetCounter().GetValue()
				s.Deliveries += v
				if hasLabel(metric, "status", "error") {
					s.DeliveryErrs += v
				}
			}
		}
	}
	if latencyCount > 0 {
		s.LLMMeanSecs = latencySum / float64(latencyCount)
	}
	return s, nil
}

func sumByLabel(family *dto.MetricFamily, label string, into map[string]float64) {
	for _, metric := range family.GetMetric() {
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == label {
				into[pair.GetValue()] += metric.GetCounter().GetValue()
			}
		}
	}
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name && pair.GetValue() == value {
			return true
		}
	}
	return false
}

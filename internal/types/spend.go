package types

import (
	ierr "github.com/ticketpulse/adwallet/internal/errors"
)

// MetricType is the metered unit reported by ad delivery
type MetricType string

const (
	MetricTypeImpression MetricType = "impression"
	MetricTypeClick      MetricType = "click"
)

func (m MetricType) Validate() error {
	switch m {
	case MetricTypeImpression, MetricTypeClick:
		return nil
	}
	return ierr.NewError("invalid metric type").
		WithHint("Metric type must be one of impression, click").
		WithReportableDetails(map[string]interface{}{
			"metric_type": m,
		}).
		Mark(ierr.ErrValidation)
}

// RateModel is the pricing model applied to a metering event
type RateModel string

const (
	// RateModelCPM prices per one thousand impressions
	RateModelCPM RateModel = "cpm"
	// RateModelCPC prices per click
	RateModelCPC RateModel = "cpc"
)

func (r RateModel) Validate() error {
	switch r {
	case RateModelCPM, RateModelCPC:
		return nil
	}
	return ierr.NewError("invalid rate model").
		WithHint("Rate model must be one of cpm, cpc").
		WithReportableDetails(map[string]interface{}{
			"rate_model": r,
		}).
		Mark(ierr.ErrValidation)
}

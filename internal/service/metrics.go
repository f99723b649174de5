package service

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	leadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Leads captured, partitioned by duplicate verdict",
		},
		[]string{"duplicate"},
	)
	policiesClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "policies_claimed_total",
		Help: "Policies linked to a customer account by number",
	})
	policiesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "policies_uploaded_total",
		Help: "Policy documents uploaded by customers",
	})
)

func ObserveLeadCreated(duplicate bool) {
	leadsCreated.WithLabelValues(strconv.FormatBool(duplicate)).Inc()
}

func ObservePolicyClaimed() { policiesClaimed.Inc() }

func ObservePolicyUploaded() { policiesUploaded.Inc() }

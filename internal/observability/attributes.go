// Package observability records scheduler RPC metrics and writes them in the
// Prometheus text format for the node_exporter textfile collector.
package observability

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dyluth/aurora-cli/pkg/scheduler"
)

// Attribute keys
const (
	attrCluster = "cluster"
	attrMethod  = "method"
	attrOutcome = "outcome"
)

// OutcomeTransportError is the outcome of a call that produced no envelope.
const OutcomeTransportError = "transport_error"

func clusterAttr(cluster string) attribute.KeyValue {
	return attribute.String(attrCluster, cluster)
}

func methodAttr(method string) attribute.KeyValue {
	return attribute.String(attrMethod, method)
}

func outcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(attrOutcome, outcome)
}

// Outcome names the result of a call: the lower-cased response code, or
// transport_error when the call failed before a response arrived.
func Outcome(code scheduler.ResponseCode, err error) string {
	if err != nil {
		return OutcomeTransportError
	}
	return strings.ToLower(code.String())
}

// Package metrics publishes occupancy gauges to CloudWatch.
// file: metrics/metrics.go
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"nilakkal-parking/logger"
)

// Datum is one gauge value.
type Datum struct {
	Name  string
	Value float64
	Unit  string
	// Zone is the ZoneName dimension; empty for facility-wide values.
	Zone string
}

// Publisher sends gauges somewhere.
type Publisher interface {
	Publish(ctx context.Context, data []Datum) error
}

// Nop drops every datum. Used when metrics are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, []Datum) error { return nil }

// maxDatumsPerCall is the PutMetricData batch limit.
const maxDatumsPerCall = 1000

// CloudWatchPublisher pushes gauges with PutMetricData.
type CloudWatchPublisher struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string
}

// NewCloudWatchPublisher creates a publisher from the default AWS session.
func NewCloudWatchPublisher(namespace string) (*CloudWatchPublisher, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return NewCloudWatchPublisherWithClient(cloudwatch.New(sess), namespace), nil
}

// NewCloudWatchPublisherWithClient wraps an existing client.
func NewCloudWatchPublisherWithClient(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client, namespace: namespace}
}

// Publish sends data in batches.
func (p *CloudWatchPublisher) Publish(ctx context.Context, data []Datum) error {
	now := time.Now()
	for start := 0; start < len(data); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(data) {
			end = len(data)
		}
		batch := make([]*cloudwatch.MetricDatum, 0, end-start)
		for _, d := range data[start:end] {
			batch = append(batch, toMetricDatum(d, now))
		}
		_, err := p.client.PutMetricDataWithContext(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: batch,
		})
		if err != nil {
			logger.Error.Printf("[CloudWatchPublisher.Publish] CloudWatch metric failed: %v", err)
			return err
		}
	}
	return nil
}

func toMetricDatum(d Datum, ts time.Time) *cloudwatch.MetricDatum {
	unit := d.Unit
	if unit == "" {
		unit = cloudwatch.StandardUnitCount
	}
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(d.Name),
		Timestamp:  aws.Time(ts),
		Value:      aws.Float64(d.Value),
		Unit:       aws.String(unit),
	}
	if d.Zone != "" {
		datum.Dimensions = []*cloudwatch.Dimension{
			{
				Name:  aws.String("ZoneName"),
				Value: aws.String(d.Zone),
			},
		}
	}
	return datum
}

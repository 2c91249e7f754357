// file: metrics/metrics_test.go
package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nilakkal-parking/models"
)

type fakeCloudWatch struct {
	cloudwatchiface.CloudWatchAPI
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricDataWithContext(_ aws.Context, in *cloudwatch.PutMetricDataInput, _ ...request.Option) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

type fakeZones []models.ParkingZone

func (f fakeZones) Zones() []models.ParkingZone { return f }

type fakeCounter int

func (f fakeCounter) ConnectionCount() int { return int(f) }

// Test: zone gauges carry the ZoneName dimension
func TestCloudWatchPublisher_Publish(t *testing.T) {
	fake := &fakeCloudWatch{}
	pub := NewCloudWatchPublisherWithClient(fake, "Nilakkal")

	err := pub.Publish(context.Background(), []Datum{
		{Name: "ZoneOccupied", Value: 3, Zone: "Nilakkal Zone 1"},
		{Name: "TotalOccupied", Value: 3},
	})
	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "Nilakkal", aws.StringValue(in.Namespace))
	require.Len(t, in.MetricData, 2)
	assert.Equal(t, "ZoneName", aws.StringValue(in.MetricData[0].Dimensions[0].Name))
	assert.Equal(t, "Nilakkal Zone 1", aws.StringValue(in.MetricData[0].Dimensions[0].Value))
	assert.Empty(t, in.MetricData[1].Dimensions)
	assert.Equal(t, cloudwatch.StandardUnitCount, aws.StringValue(in.MetricData[1].Unit))
}

// Test: large payloads are split into batches
func TestCloudWatchPublisher_Batches(t *testing.T) {
	fake := &fakeCloudWatch{}
	pub := NewCloudWatchPublisherWithClient(fake, "Nilakkal")

	data := make([]Datum, maxDatumsPerCall+1)
	for i := range data {
		data[i] = Datum{Name: "ZoneOccupied", Value: 1}
	}
	require.NoError(t, pub.Publish(context.Background(), data))
	require.Len(t, fake.inputs, 2)
	assert.Len(t, fake.inputs[1].MetricData, 1)
}

// Test: CloudWatch errors are returned
func TestCloudWatchPublisher_Error(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	pub := NewCloudWatchPublisherWithClient(fake, "Nilakkal")

	err := pub.Publish(context.Background(), []Datum{{Name: "TotalOccupied", Value: 1}})
	assert.EqualError(t, err, "throttled")
}

// Test: the reporter emits per-zone and total gauges
func TestReporter_Collect(t *testing.T) {
	zones := fakeZones{
		{ID: "Z1", Name: "Nilakkal Zone 1", Capacity: 50, Occupied: 10},
		{ID: "Z2", Name: "Nilakkal Zone 2", Capacity: 20, Occupied: 25},
	}
	r := NewReporter(zones, fakeCounter(4), Nop{})

	byKey := map[string]float64{}
	for _, d := range r.Collect() {
		byKey[d.Name+"/"+d.Zone] = d.Value
	}
	assert.Equal(t, 10.0, byKey["ZoneOccupied/Nilakkal Zone 1"])
	assert.Equal(t, 40.0, byKey["ZoneAvailable/Nilakkal Zone 1"])
	assert.Equal(t, 0.0, byKey["ZoneAvailable/Nilakkal Zone 2"], "over-full zones report zero available")
	assert.Equal(t, 35.0, byKey["TotalOccupied/"])
	assert.Equal(t, 70.0, byKey["TotalCapacity/"])
	assert.Equal(t, 4.0, byKey["DashboardConnections/"])
}

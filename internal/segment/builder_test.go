package segment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmix/tripmix/internal/segment"
	"github.com/tripmix/tripmix/internal/tripdata"
	"github.com/tripmix/tripmix/pkg/polyline"
)

func TestBuild_Train(t *testing.T) {
	raw := tripdata.RawLeg{
		Mode:          "TRANSIT",
		DurationValue: 1800,
		DistanceValue: 16000,
		TransitDetails: &tripdata.TransitDetails{
			Line: &tripdata.TransitLine{
				Name:    "Northern",
				Color:   "#1b3b6f",
				Vehicle: &tripdata.Vehicle{Type: "HEAVY_RAIL", Name: "Train"},
			},
			DepartureStop: &tripdata.Stop{Name: "Brough"},
			ArrivalStop:   &tripdata.Stop{Name: "Leeds"},
			NumStops:      4,
		},
	}

	seg, err := segment.Build(raw, "Walk & Train")
	require.NoError(t, err)

	assert.Equal(t, segment.ModeTrain, seg.Mode)
	assert.Equal(t, segment.IconTrain, seg.IconID)
	assert.Equal(t, "Northern", seg.Label)
	assert.Equal(t, "#1b3b6f", seg.LineColor)
	assert.Equal(t, 30, seg.Time)
	assert.InDelta(t, 9.94, float64(seg.Distance), 0.005)
	assert.InDelta(t, 9.9419*0.06, float64(seg.CO2), 0.001)
	assert.Zero(t, seg.Cost)
	assert.Equal(t, "Brough", seg.From)
	assert.Equal(t, "Leeds", seg.To)
	assert.Equal(t, 4, seg.NumStops)
	assert.NotNil(t, seg.Path)
	assert.Empty(t, seg.Path)
}

func TestBuild_Bus(t *testing.T) {
	tests := []struct {
		name      string
		shortName string
		wantLabel string
		wantCost  float64
	}{
		{"numeric line gets prefix", "24", "Bus 24", segment.BusFareStandard},
		{"express line", "X46", "X46", segment.BusFareExpress},
		{"park and ride line", "PR1", "PR1", segment.BusFareParkRide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tripdata.RawLeg{
				Mode:          "TRANSIT",
				DurationValue: 600,
				DistanceValue: 3218.68,
				TransitDetails: &tripdata.TransitDetails{
					Line: &tripdata.TransitLine{
						ShortName: tt.shortName,
						Vehicle:   &tripdata.Vehicle{Type: "BUS"},
					},
				},
			}

			seg, err := segment.Build(raw, "Bus")
			require.NoError(t, err)
			assert.Equal(t, segment.ModeBus, seg.Mode)
			assert.Equal(t, segment.IconBus, seg.IconID)
			assert.Equal(t, tt.wantLabel, seg.Label)
			assert.InDelta(t, tt.wantCost, float64(seg.Cost), 1e-9)
			assert.InDelta(t, 0.2, float64(seg.CO2), 1e-6)
		})
	}
}

func TestBuild_Car(t *testing.T) {
	raw := tripdata.RawLeg{
		Mode:          "DRIVING",
		DurationValue: 900,
		DistanceValue: 16093.4,
		Instructions:  "Drive from Home to Brough Station",
	}

	drive, err := segment.Build(raw, "Drive")
	require.NoError(t, err)
	assert.Equal(t, segment.ModeCar, drive.Mode)
	assert.Equal(t, "Drive", drive.Label)
	assert.Equal(t, "#0000FF", drive.LineColor)
	assert.InDelta(t, 4.5, float64(drive.Cost), 1e-9)
	assert.InDelta(t, 2.7, float64(drive.CO2), 1e-9)
	assert.Equal(t, "Home", drive.From)
	assert.Equal(t, "Brough Station", drive.To)

	uber, err := segment.Build(raw, "Uber & Train")
	require.NoError(t, err)
	assert.Equal(t, "Uber", uber.Label)
	assert.Equal(t, "#000000", uber.LineColor)
	assert.True(t, uber.IsRideshare())
	assert.Zero(t, uber.Cost)
}

func TestBuild_StreetModes(t *testing.T) {
	walk, err := segment.Build(tripdata.RawLeg{Mode: "WALKING", DurationValue: 150}, "Walk")
	require.NoError(t, err)
	assert.Equal(t, segment.ModeWalk, walk.Mode)
	assert.Equal(t, "Walk", walk.Label)
	assert.Equal(t, segment.IconFootprints, walk.IconID)
	assert.Equal(t, 2, walk.Time, "2.5 minutes rounds half to even")

	bike, err := segment.Build(tripdata.RawLeg{Mode: "BICYCLING", DurationValue: 210, DistanceValue: -10}, "Cycle")
	require.NoError(t, err)
	assert.Equal(t, segment.ModeBike, bike.Mode)
	assert.Equal(t, segment.IconBike, bike.IconID)
	assert.Equal(t, 4, bike.Time)
	assert.Zero(t, bike.Distance)
	assert.Zero(t, bike.CO2)

	ferry, err := segment.Build(tripdata.RawLeg{Mode: "FERRY"}, "Ferry")
	require.NoError(t, err)
	assert.Equal(t, segment.Mode("ferry"), ferry.Mode)
	assert.Equal(t, "Ferry", ferry.Label)
}

func TestBuild_DecodesPolyline(t *testing.T) {
	seg, err := segment.Build(tripdata.RawLeg{Mode: "WALKING", Polyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`@"}, "Walk")
	require.NoError(t, err)
	require.Len(t, seg.Path, 3)
	assert.Equal(t, polyline.Coordinate{Lat: 38.5, Lng: -120.2}, seg.Path[0])
}

func TestBuildAll_CorruptPolyline(t *testing.T) {
	legs := []tripdata.RawLeg{
		{Mode: "WALKING", DurationValue: 120},
		{Mode: "WALKING", Polyline: "_p~iF"},
	}

	_, err := segment.BuildAll(legs, "Walk")
	require.Error(t, err)

	var buildErr *segment.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "Walk", buildErr.Option)
	assert.Equal(t, 1, buildErr.Index)
	assert.ErrorIs(t, err, polyline.ErrTruncated)
}

func TestMapMode(t *testing.T) {
	tests := []struct {
		raw  string
		td   *tripdata.TransitDetails
		want segment.Mode
	}{
		{"WALKING", nil, segment.ModeWalk},
		{"driving", nil, segment.ModeCar},
		{"BICYCLING", nil, segment.ModeBike},
		{"TRANSIT", nil, segment.ModeBus},
		{"TRANSIT", &tripdata.TransitDetails{VehicleType: "TRAIN"}, segment.ModeTrain},
		{"TRANSIT", &tripdata.TransitDetails{Line: &tripdata.TransitLine{Vehicle: &tripdata.Vehicle{Type: "HEAVY_RAIL"}}}, segment.ModeTrain},
		{"TRANSIT", &tripdata.TransitDetails{VehicleType: "TRAM"}, segment.ModeBus},
		{"TAXI", nil, segment.Mode("taxi")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, segment.MapMode(tt.raw, tt.td), tt.raw)
	}
}

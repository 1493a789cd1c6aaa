package worker_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/smartmobility/tripplanner/internal/provider/resilience"
	"github.com/smartmobility/tripplanner/internal/worker"
)

func newDispatcher(planner *fakePlanner, resolver *fakeResolver) *worker.Dispatcher {
	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config:   worker.WarmConfig{Hubs: testHubs(2), Destinations: []string{"Parque Lleras", "Plaza Botero"}},
		Planner:  planner,
		Resolver: resolver,
		Logger:   zerolog.Nop(),
	})
	return worker.NewDispatcher(job, resilience.NewRegistry(), zerolog.Nop())
}

func TestDispatcher_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		planner  *fakePlanner
		resolver *fakeResolver
		want     worker.Outcome
		requests int
	}{
		{
			name:     "warm routes",
			payload:  `{"job_type":"warm_routes"}`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{},
			want:     worker.Ack,
			requests: 4,
		},
		{
			name:     "warm routes with destination override",
			payload:  `{"job_type":"warm_routes","destinations":["Parque Arví"]}`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{},
			want:     worker.Ack,
			requests: 2,
		},
		{
			name:     "warm routes mostly failing",
			payload:  `{"job_type":"warm_routes"}`,
			planner:  &fakePlanner{fail: true},
			resolver: &fakeResolver{},
			want:     worker.Nack,
			requests: 4,
		},
		{
			name:     "health check",
			payload:  `{"job_type":"health_check"}`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{},
			want:     worker.Ack,
			requests: 1,
		},
		{
			name:     "health check failing",
			payload:  `{"job_type":"health_check"}`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{missing: map[string]bool{"Parque Lleras": true}},
			want:     worker.Nack,
		},
		{
			name:     "unknown job type is acked",
			payload:  `{"job_type":"provider_refresh"}`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{},
			want:     worker.Ack,
		},
		{
			name:     "malformed payload is nacked",
			payload:  `{not json`,
			planner:  &fakePlanner{},
			resolver: &fakeResolver{},
			want:     worker.Nack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(tt.planner, tt.resolver)

			got := d.Dispatch(context.Background(), []byte(tt.payload))

			assert.Equal(t, tt.want, got)
			assert.Len(t, tt.planner.requests, tt.requests)
		})
	}
}

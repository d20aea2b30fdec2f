package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greensim/greensim/sim"
)

type fakeReceiver struct {
	received []*sim.Cloudlet
}

func (f *fakeReceiver) Receive(c *sim.Cloudlet, now int64) { f.received = append(f.received, c) }

func makeCloudlets(arrivals ...int64) ([]*sim.Cloudlet, map[int]*sim.Cloudlet) {
	list := make([]*sim.Cloudlet, len(arrivals))
	byID := make(map[int]*sim.Cloudlet, len(arrivals))
	for i, a := range arrivals {
		c := sim.NewCloudlet(i, a, 1000, 2, 0, 0)
		list[i] = c
		byID[i] = c
	}
	return list, byID
}

func TestIntake_FirstCallForcesWindowStartToZero(t *testing.T) {
	list, _ := makeCloudlets(0, 1, 5)
	r := NewRouter(list)

	admitted := r.Intake(100, 3) // windowStart ignored on first call
	assert.Equal(t, 2, admitted) // arrivals 0 and 1 fall in [0,3)
	assert.Equal(t, 2, r.QueueLen())
}

func TestIntake_SubsequentCallsAdvanceTheWindow(t *testing.T) {
	list, _ := makeCloudlets(0, 1, 5, 6)
	r := NewRouter(list)
	r.Intake(0, 2)
	assert.Equal(t, 2, r.QueueLen())

	admitted := r.Intake(2, 6)
	assert.Equal(t, 1, admitted) // only arrival=5
	assert.Equal(t, 3, r.QueueLen())
}

func TestGetBatch_PopsFromHeadAndMutatesQueue(t *testing.T) {
	list, _ := makeCloudlets(0, 0, 0)
	r := NewRouter(list)
	r.Intake(0, 1)

	batch := r.GetBatch(2)
	assert.Equal(t, []int{0, 1}, batch)
	assert.Equal(t, 1, r.QueueLen())
}

func TestPeekBatch_DoesNotMutateQueue(t *testing.T) {
	list, _ := makeCloudlets(0, 0, 0)
	r := NewRouter(list)
	r.Intake(0, 1)

	peeked := r.PeekBatch(2)
	assert.Equal(t, []int{0, 1}, peeked)
	assert.Equal(t, 3, r.QueueLen())
}

func TestPesDistribution_Buckets(t *testing.T) {
	list := []*sim.Cloudlet{
		sim.NewCloudlet(0, 0, 100, 1, 0, 0), // small
		sim.NewCloudlet(1, 0, 100, 4, 0, 0), // medium
		sim.NewCloudlet(2, 0, 100, 8, 0, 0), // large
	}
	byID := map[int]*sim.Cloudlet{0: list[0], 1: list[1], 2: list[2]}
	r := NewRouter(list)
	r.Intake(0, 1)

	dist := r.PesDistribution(byID)
	assert.Equal(t, [3]int{1, 1, 1}, dist)
}

func TestRoute_DropsOutOfRangeDestinationAndCounts(t *testing.T) {
	list, byID := makeCloudlets(0, 0)
	r := NewRouter(list)
	r.Intake(0, 1)
	batch := r.GetBatch(2)

	recv := []Receiver{&fakeReceiver{}}
	routed := r.Route(batch, []int{0, 5}, byID, recv, 10)

	assert.Equal(t, 1, routed)
	assert.Equal(t, 1, r.RoutingInvalidCount())
	require.Len(t, recv[0].(*fakeReceiver).received, 1)
}

func TestRouteBatch_NeverPopsMoreThanActionsOrBatchSizeAllow(t *testing.T) {
	list, byID := makeCloudlets(0, 0, 0, 0)
	r := NewRouter(list)
	r.Intake(0, 1)

	recv := []Receiver{&fakeReceiver{}, &fakeReceiver{}}
	routed := r.RouteBatch(10, []int{0, 1}, byID, recv, 0) // batchSize=10 but only 2 actions given
	assert.Equal(t, 2, routed)
	assert.Equal(t, 2, r.QueueLen()) // remaining 2 jobs left untouched
}

func TestRouteBatch_RespectsBatchSizeCap(t *testing.T) {
	list, byID := makeCloudlets(0, 0, 0, 0)
	r := NewRouter(list)
	r.Intake(0, 1)

	recv := []Receiver{&fakeReceiver{}}
	routed := r.RouteBatch(2, []int{0, 0, 0, 0}, byID, recv, 0)
	assert.Equal(t, 2, routed)
	assert.Equal(t, 2, r.QueueLen())
}

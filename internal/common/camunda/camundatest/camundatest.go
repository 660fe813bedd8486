// Package camundatest provides an in-memory job client and activated-job
// builders for handler tests.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// NewJob builds an activated job of taskType carrying vars.
func NewJob(t testing.TB, key int64, taskType string, vars map[string]interface{}) entities.Job {
	t.Helper()

	variables, err := json.Marshal(vars)
	if err != nil {
		t.Fatalf("marshal job variables: %v", err)
	}

	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:                      key,
			Type:                     taskType,
			ProcessInstanceKey:       key * 10,
			BpmnProcessId:            "mca-application",
			ProcessDefinitionVersion: 1,
			ProcessDefinitionKey:     1,
			ElementId:                taskType + "-task",
			ElementInstanceKey:       1,
			CustomHeaders:            "{}",
			Worker:                   "test-worker",
			Retries:                  3,
			Deadline:                 0,
			Variables:                string(variables),
		},
	}
}

// JobClient records the commands a handler sends.
type JobClient struct {
	gateway *gateway
}

func NewJobClient() *JobClient {
	return &JobClient{gateway: &gateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

// Completed returns the variables of every completed job, decoded.
func (c *JobClient) Completed(t testing.TB) []map[string]interface{} {
	t.Helper()
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()

	out := make([]map[string]interface{}, 0, len(c.gateway.completed))
	for _, req := range c.gateway.completed {
		out = append(out, decode(t, req.Variables))
	}
	return out
}

// Failed returns the fail-job requests sent so far.
func (c *JobClient) Failed() []*pb.FailJobRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.gateway.failed...)
}

// Thrown returns the throw-error requests sent so far.
func (c *JobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.gateway.thrown...)
}

func decode(t testing.TB, raw string) map[string]interface{} {
	t.Helper()
	vars := map[string]interface{}{}
	if raw == "" {
		return vars
	}
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		t.Fatalf("decode job variables: %v", err)
	}
	return vars
}

// gateway satisfies pb.GatewayClient; only the job commands are implemented.
type gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *gateway) CompleteJob(_ context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

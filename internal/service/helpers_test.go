package service

import (
	"context"
	"sync"

	"github.com/user/bluckboster/internal/model"
)

var (
	testMovies    = model.Table{Name: "BluckBoster_movies", Key: model.FieldID}
	testMembers   = model.Table{Name: "BluckBoster_members", Key: model.FieldUsername}
	testCentroids = model.Table{Name: "BluckBoster_centroids", Key: model.FieldID}
)

// fakeGenerator 按提示词返回预设文本
type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.responses[prompt], nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

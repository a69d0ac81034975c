package events

import (
	"strings"
	"testing"
)

func TestShardMessage(t *testing.T) {
	tests := []struct {
		name string
		id   int
		up   bool
		want string
	}{
		{"disconnect", 0, false, "PancyWarn shard 0 desconectado, el filtro automático queda en pausa."},
		{"resumed", 3, true, "PancyWarn shard 3 reanudado, el filtro automático vuelve a estar activo."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shardMessage(tt.id, tt.up); !strings.HasSuffix(got, tt.want) {
				t.Errorf("shardMessage(%d, %v) = %q, want suffix %q", tt.id, tt.up, got, tt.want)
			}
		})
	}
}

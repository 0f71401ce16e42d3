package query

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rumblefrog/go-a2s"
)

// Result is a flattened A2S_INFO (+ A2S_PLAYER) response.
type Result struct {
	Name        string
	Map         string
	PlayerCount int
	MaxPlayers  int
	Players     []string
}

// Querier issues Source-engine status queries against a game server.
// Implementations must fail on unreachable or non-responding targets.
type Querier interface {
	Query(ctx context.Context, address string, port int, timeout time.Duration) (*Result, error)
}

// A2SQuerier queries over the Valve A2S wire protocol. One UDP client
// per call; the short timeout keeps probe latency bounded.
type A2SQuerier struct{}

func NewA2SQuerier() *A2SQuerier {
	return &A2SQuerier{}
}

func (q *A2SQuerier) Query(ctx context.Context, address string, port int, timeout time.Duration) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := a2s.NewClient(
		net.JoinHostPort(address, strconv.Itoa(port)),
		a2s.TimeoutOption(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create a2s client: %w", err)
	}
	defer client.Close()

	info, err := client.QueryInfo()
	if err != nil {
		return nil, fmt.Errorf("query info: %w", err)
	}

	result := &Result{
		Name:        info.Name,
		Map:         info.Map,
		PlayerCount: int(info.Players),
		MaxPlayers:  int(info.MaxPlayers),
	}

	// Player names are nice to have; an info response alone still
	// counts as online
	if players, err := client.QueryPlayer(); err == nil && players != nil {
		for _, p := range players.Players {
			result.Players = append(result.Players, p.Name)
		}
	}

	return result, nil
}

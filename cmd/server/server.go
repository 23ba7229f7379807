package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/flatsql/flatsql"
	"github.com/flatsql/flatsql/db"
)

// Server is a TCP SQL server exposing a FlatSQL engine. Queries from all
// connections are serialized through one engine.
type Server struct {
	listener   net.Listener
	engine     *db.Engine
	authConfig *AuthConfig
	mu         sync.Mutex
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewServer creates a server for the given instance. A nil auth config
// disables authentication.
func NewServer(instance *flatsql.Instance, auth *AuthConfig) *Server {
	return &Server{
		engine:     instance.Engine(),
		authConfig: auth,
		done:       make(chan struct{}),
	}
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("SQL server listening on %s", addr)

	go s.acceptLoop()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	log.Printf("Client connected: %s", conn.RemoteAddr())

	state := &ConnectionState{}
	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}

		lowered := strings.ToLower(query)
		if lowered == "quit" || lowered == "exit" {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		var response Response
		switch {
		case strings.HasPrefix(strings.ToUpper(query), "AUTH "):
			response = s.handleAuth(query, state)
		case s.authConfig != nil && !state.IsAuthenticated():
			response = Response{Success: false, Error: "authentication required"}
		default:
			response = s.executeQuery(query)
		}

		data, err := EncodeResponse(response)
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			continue
		}

		if _, err := conn.Write(data); err != nil {
			log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) executeQuery(query string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.engine.Execute(query)
	if err != nil {
		return Response{
			Success: false,
			Error:   err.Error(),
		}
	}

	switch r := result.(type) {
	case db.QueryResult:
		rendered := make([][]string, len(r.Rows))
		for i, row := range r.Rows {
			cells := make([]string, len(row))
			for j, value := range row {
				cells[j] = value.String()
			}
			rendered[i] = cells
		}

		data, _ := json.Marshal(QueryResponse{
			Columns: r.Columns,
			Data:    rendered,
			Rows:    len(r.Rows),
		})
		return Response{Success: true, Type: "query", Result: data}

	case db.ExecResult:
		data, _ := json.Marshal(ExecResponse{
			Message:  r.Message,
			Affected: r.Affected,
		})
		return Response{Success: true, Type: "exec", Result: data}

	default:
		return Response{Success: true, Type: "unknown"}
	}
}

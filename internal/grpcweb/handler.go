package grpcweb

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	pb "clinic-schedule-api/api/schedule/v1"
)

const (
	contentType = "application/grpc-web+json"
	maxBody     = 4 << 20

	flagData    = 0x00
	flagTrailer = 0x80
)

// Bridge translates gRPC-Web (browser HTTP/1.1) → native gRPC via TCP.
// Frames are relayed as opaque JSON; the gRPC server does the decoding.
type Bridge struct {
	conn *grpc.ClientConn
	log  *zap.Logger
	own  bool
}

// New dials the gRPC server at addr (e.g. "localhost:50051").
func New(addr string, log *zap.Logger) (*Bridge, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	b := NewWithConn(conn, log)
	b.own = true
	return b, nil
}

// NewWithConn relays over an existing connection, which the caller keeps
// ownership of.
func NewWithConn(conn *grpc.ClientConn, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{conn: conn, log: log}
}

func (b *Bridge) Close() {
	if b.own {
		b.conn.Close()
	}
}

// Handler returns an http.Handler that translates gRPC-Web → gRPC for
// methods of the schedule service.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, X-Grpc-Web, X-User-Agent, Authorization")
		w.Header().Set("Access-Control-Expose-Headers",
			"Grpc-Status, Grpc-Message, Grpc-Status-Details-Bin")
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, contentType) {
			http.Error(w, "expected "+contentType, http.StatusUnsupportedMediaType)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/"+pb.ServiceName+"/") {
			writeStatus(w, status.New(codes.Unimplemented, "unknown service"))
			return
		}

		b.log.Debug("grpc-web", zap.String("method", r.URL.Path))
		b.forward(w, r)
	})
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeStatus(w, status.New(codes.ResourceExhausted, "request too large"))
			return
		}
		writeStatus(w, status.New(codes.Internal, "read body failed"))
		return
	}
	payload, err := unframe(body)
	if err != nil {
		writeStatus(w, status.New(codes.InvalidArgument, err.Error()))
		return
	}

	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		md.Set("x-forwarded-for", host)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st := status.Convert(err)
		b.log.Debug("grpc-web error",
			zap.String("method", r.URL.Path),
			zap.String("code", st.Code().String()),
		)
		writeStatus(w, st)
		return
	}
	writeSuccess(w, resp.data)
}

// unframe extracts the single message of a gRPC-Web request:
// 1-byte flag + 4-byte big-endian length + payload.
func unframe(body []byte) ([]byte, error) {
	if len(body) < 5 {
		return nil, errors.New("body too short")
	}
	if body[0] != flagData {
		return nil, errors.New("compressed or trailer frames are not accepted")
	}
	n := binary.BigEndian.Uint32(body[1:5])
	if uint64(n)+5 > uint64(len(body)) {
		return nil, errors.New("incomplete frame")
	}
	return body[5 : 5+n], nil
}

// rawMsg wraps already-encoded JSON bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through untouched. It is named "json" so the gRPC
// server decodes the payload with the schedule codec.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}

func (rawCodec) Name() string { return pb.CodecName }

func frame(flag byte, data []byte) []byte {
	f := make([]byte, 5+len(data))
	f[0] = flag
	binary.BigEndian.PutUint32(f[1:5], uint32(len(data)))
	copy(f[5:], data)
	return f
}

func trailer(st *status.Status) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "grpc-status:%d\r\n", st.Code())
	if msg := st.Message(); msg != "" {
		fmt.Fprintf(&sb, "grpc-message:%s\r\n", url.PathEscape(msg))
	}
	if sp := st.Proto(); len(sp.GetDetails()) > 0 {
		if bin, err := proto.Marshal(sp); err == nil {
			fmt.Fprintf(&sb, "grpc-status-details-bin:%s\r\n", base64.RawStdEncoding.EncodeToString(bin))
		}
	}
	return frame(flagTrailer, []byte(sb.String()))
}

func writeStatus(w http.ResponseWriter, st *status.Status) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(trailer(st))
}

func writeSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(frame(flagData, data))
	w.Write(trailer(status.New(codes.OK, "")))
}

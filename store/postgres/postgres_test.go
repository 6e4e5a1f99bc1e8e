package postgres

import "testing"

func TestSerializeEmbedding(t *testing.T) {
	tests := []struct {
		in   []float32
		want string
	}{
		{[]float32{1, 2, 3}, "[1,2,3]"},
		{[]float32{0.5, -0.25}, "[0.5,-0.25]"},
		{[]float32{}, "[]"},
	}
	for _, tt := range tests {
		if got := serializeEmbedding(tt.in); got != tt.want {
			t.Errorf("serializeEmbedding(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVectorType(t *testing.T) {
	s := New(nil)
	if got := s.vectorType(); got != "vector" {
		t.Errorf("default vector type = %q", got)
	}
	s = New(nil, WithEmbeddingDimension(1536))
	if got := s.vectorType(); got != "vector(1536)" {
		t.Errorf("dimensioned vector type = %q", got)
	}
}

func TestHNSWWithClause(t *testing.T) {
	s := New(nil)
	if got := s.hnswWithClause(); got != "" {
		t.Errorf("default with clause = %q, want empty", got)
	}
	s = New(nil, WithHNSWM(32), WithEFConstruction(128))
	if got := s.hnswWithClause(); got != " WITH (m = 32, ef_construction = 128)" {
		t.Errorf("with clause = %q", got)
	}
	s = New(nil, WithHNSWM(32))
	if got := s.hnswWithClause(); got != " WITH (m = 32)" {
		t.Errorf("with clause = %q", got)
	}
}

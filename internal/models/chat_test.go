package models

import "testing"

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *AskRequest
		wantErr bool
		wantK   int
	}{
		{"empty query", &AskRequest{Query: ""}, true, 0},
		{"default k applied", &AskRequest{Query: "iqama renewal"}, false, 5},
		{"explicit k kept", &AskRequest{Query: "x", K: 3}, false, 3},
		{"k capped", &AskRequest{Query: "x", K: 500}, false, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(5, 20)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.req.K != tt.wantK {
				t.Errorf("K = %d, want %d", tt.req.K, tt.wantK)
			}
		})
	}
}

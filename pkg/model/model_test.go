package model

import (
	"encoding/json"
	"testing"
)

func TestDecodeTokenMetadata(t *testing.T) {
	const uri = "ipfs://bafkreihash/1.json"

	tests := []struct {
		name      string
		content   string
		wantName  string
		wantImage string
		wantAttrs int
	}{
		{
			name:      "JSON metadata",
			content:   `{"name":"MiniPay #1","description":"Member","image":"ipfs://img","attributes":[{"trait_type":"tier","value":"gold"},{"trait_type":"level","value":3}]}`,
			wantName:  "MiniPay #1",
			wantImage: "ipfs://img",
			wantAttrs: 2,
		},
		{
			name:      "JSON with leading whitespace",
			content:   "\n  {\"name\":\"x\"}",
			wantName:  "x",
			wantImage: "",
		},
		{
			name:      "image bytes",
			content:   "RIFF\x00\x00WEBPVP8",
			wantImage: uri,
		},
		{
			name:      "empty content",
			content:   "",
			wantImage: uri,
		},
		{
			name:      "broken JSON",
			content:   `{"name":`,
			wantImage: uri,
		},
		{
			name:      "JSON array",
			content:   `[1,2]`,
			wantImage: uri,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := DecodeTokenMetadata(uri, []byte(tt.content))
			if md.URI != uri {
				t.Fatalf("URI = %q, want %q", md.URI, uri)
			}
			if md.Name != tt.wantName {
				t.Fatalf("Name = %q, want %q", md.Name, tt.wantName)
			}
			if md.Image != tt.wantImage {
				t.Fatalf("Image = %q, want %q", md.Image, tt.wantImage)
			}
			if len(md.Attributes) != tt.wantAttrs {
				t.Fatalf("Attributes = %d, want %d", len(md.Attributes), tt.wantAttrs)
			}
		})
	}
}

func TestTokenMetadataJSONOmitsURI(t *testing.T) {
	data, err := json.Marshal(&TokenMetadata{URI: "https://x", Name: "n"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"name":"n"}` {
		t.Fatalf("unexpected JSON %s", data)
	}
}

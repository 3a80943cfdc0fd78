package media

import (
	"strings"
	"testing"
)

// stubRow satisfies the scan target interface; it only populates the
// networks jsonb column, the sole []byte destination.
type stubRow struct {
	networks []byte
}

func (r stubRow) Scan(dest ...interface{}) error {
	for _, d := range dest {
		if b, ok := d.(*[]byte); ok {
			*b = r.networks
		}
	}
	return nil
}

func TestScanMediaDecodesNetworks(t *testing.T) {
	m, err := scanMedia(stubRow{networks: []byte(`[{"name":"Netflix","logo_url":"https://img/n.png"}]`)})
	if err != nil {
		t.Fatalf("scanMedia: %v", err)
	}
	if len(m.Networks) != 1 || m.Networks[0].Name != "Netflix" {
		t.Fatalf("Networks = %+v, want single Netflix entry", m.Networks)
	}
}

func TestScanMediaCorruptNetworks(t *testing.T) {
	_, err := scanMedia(stubRow{networks: []byte(`{not json`)})
	if err == nil {
		t.Fatal("corrupt networks column must fail the scan")
	}
	if !strings.Contains(err.Error(), "decode networks") {
		t.Fatalf("err = %v, want networks decode context", err)
	}
}

func TestScanMediaEmptyNetworks(t *testing.T) {
	m, err := scanMedia(stubRow{})
	if err != nil {
		t.Fatalf("scanMedia: %v", err)
	}
	if m.Networks != nil {
		t.Fatalf("Networks = %+v, want nil for NULL column", m.Networks)
	}
}

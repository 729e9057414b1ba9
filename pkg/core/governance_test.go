//go:build governance

package core_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/leapstack-labs/leaptds"

// allowedImports lists the module packages each pkg/ package may import.
// Binding, dispatch and classification stay independent of any concrete
// driver; only the mssql adapter knows about the registry.
var allowedImports = map[string][]string{
	"pkg/core":                   {},
	"pkg/bind":                   {"pkg/core"},
	"pkg/dberr":                  {},
	"pkg/dispatch":               {"pkg/core", "pkg/bind", "pkg/dberr"},
	"pkg/adapter":                {"pkg/core"},
	"pkg/adapters/mssql/dialect": {"pkg/core"},
	"pkg/adapters/mssql":         {"pkg/adapter", "pkg/adapters/mssql/dialect"},
}

func TestGovernance_Layering(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, modulePath+"/pkg/...")
	if err != nil {
		t.Fatalf("failed to load packages: %v", err)
	}

	base := modulePath + "/"
	for _, p := range pkgs {
		name := strings.TrimPrefix(p.PkgPath, base)
		allowed, known := allowedImports[name]
		if !known {
			t.Errorf("package %s has no layering entry", name)
			continue
		}

		ok := make(map[string]bool, len(allowed))
		for _, a := range allowed {
			ok[a] = true
		}
		for path := range p.Imports {
			if !strings.HasPrefix(path, base) {
				continue
			}
			if dep := strings.TrimPrefix(path, base); !ok[dep] {
				t.Errorf("%s must not import %s", name, dep)
			}
		}
	}
}

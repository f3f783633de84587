// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/mstacm/dashboard-tui/internal/ui/styles"
)

func TestButtonRender(t *testing.T) {
	theme := styles.NewTheme()

	tests := []struct {
		name    string
		button  Button
		want    []string
		notWant []string
	}{
		{
			name:   "primary with key",
			button: Button{Kind: ButtonPrimary, Label: "Request AWS Access", Key: "enter"},
			want:   []string{"Request AWS Access", "[enter]"},
		},
		{
			name:   "link shows url",
			button: Button{Kind: ButtonLink, Label: "Open AWS Console", Key: "o", Detail: "https://mstacm.awsapps.com/start#/"},
			want:   []string{"Open AWS Console", "https://mstacm.awsapps.com/start#/"},
		},
		{
			name:    "disabled hides key",
			button:  Button{Kind: ButtonDisabled, Label: "Waiting for approval...", Key: "enter", Prefix: "|"},
			want:    []string{"| Waiting for approval..."},
			notWant: []string{"[enter]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.button.Render(theme)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in %q", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q in %q", w, out)
				}
			}
		})
	}
}

package i18n_test

import (
	"testing"

	"golang.org/x/text/language"

	"weixiang/pkg/i18n"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		in   string
		want language.Tag
	}{
		{"zh-CN", language.SimplifiedChinese},
		{"zh-Hans;q=0.9", language.SimplifiedChinese},
		{"en-GB", language.English},
		{"", language.English},
		{"not a tag!!", language.English},
	}
	for _, tc := range cases {
		if got := i18n.Match(tc.in); got != tc.want {
			t.Fatalf("match %q: got %s want %s", tc.in, got, tc.want)
		}
	}
}

func TestCatalogs(t *testing.T) {
	en := i18n.NewPrinter(language.English)
	zh := i18n.NewPrinter(language.SimplifiedChinese)
	if got := en.Sprintf(i18n.StatusGameOverKey, en.Sprintf(i18n.ColorBlackKey)); got != "Black wins! Game over." {
		t.Fatalf("unexpected english status: %q", got)
	}
	if got := zh.Sprintf(i18n.StatusGameOverKey, zh.Sprintf(i18n.ColorWhiteKey)); got != "白方获胜！游戏结束！" {
		t.Fatalf("unexpected chinese status: %q", got)
	}
}

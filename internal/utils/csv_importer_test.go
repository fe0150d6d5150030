package utils

import (
	"strings"
	"testing"
)

func TestParsePrizeCSV(t *testing.T) {
	t.Run("full catalog", func(t *testing.T) {
		in := "ID,Label,Percentage,Cap,Fallback\n" +
			"grand, Grand Prize ,10,1,no\n" +
			"ten,10% Off,40,,\n" +
			"thanks,Thank you,50,,yes\n"
		prizes, err := ParsePrizeCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ParsePrizeCSV: %v", err)
		}
		if len(prizes) != 3 {
			t.Fatalf("got %d prizes, want 3", len(prizes))
		}
		grand, ten, thanks := prizes[0], prizes[1], prizes[2]
		if grand.Label != "Grand Prize" || grand.Weight != 0.1 || *grand.Cap != 1 || *grand.Remaining != 1 || grand.Fallback {
			t.Errorf("grand = %+v", grand)
		}
		if ten.Cap != nil || ten.Remaining != nil || ten.Position != 1 {
			t.Errorf("ten = %+v", ten)
		}
		if !thanks.Fallback || thanks.Position != 2 {
			t.Errorf("thanks = %+v", thanks)
		}
	})

	t.Run("alternate headers", func(t *testing.T) {
		in := "handle,name,probability\nx,X,5\n"
		prizes, err := ParsePrizeCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ParsePrizeCSV: %v", err)
		}
		if prizes[0].ID != "x" || prizes[0].Weight != 0.05 {
			t.Errorf("prize = %+v", prizes[0])
		}
	})

	errorCases := map[string]string{
		"missing column": "id,label\na,A\n",
		"empty":          "id,label,percentage\n",
		"bad percentage": "id,label,percentage\na,A,lots\n",
		"bad cap":        "id,label,percentage,cap\na,A,5,-1\n",
		"missing label":  "id,label,percentage\na,,5\n",
		"no header":      "",
	}
	for name, in := range errorCases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePrizeCSV(strings.NewReader(in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

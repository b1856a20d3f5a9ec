package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/masterdata/internal/model"
)

func TestDetectRepsStripsStructuralTokens(t *testing.T) {
	names := []string{
		"26-30 OCAK Ali Veli Planlanan Ziyaret Formu.xlsx",
		"Ayşe Kaya Yapılan Ziyaret 03.02.2025-07.02.2025.xlsx",
		"2-6 ŞUBAT Mehmet Can Öztürk Sipariş Formu_YEDEK.xlsx",
	}
	reps := DetectReps(names)
	assert.Equal(t, []string{"Ali Veli", "Ayşe Kaya", "Mehmet Can Öztürk"}, reps)
}

func TestDetectRepsMergesSpellings(t *testing.T) {
	names := []string{
		"26-30 OCAK ALI VELI Planlanan.xlsx",
		"26-30 OCAK Ali Veli Yapılan.xlsx",
		"2-6 ŞUBAT AliVeli Can Planlanan.xlsx",
		"2-6 ŞUBAT Ali Veli Can Yapılan.xlsx",
	}
	reps := DetectReps(names)
	require.Len(t, reps, 2)
	assert.Contains(t, reps, "Ali Veli Can")
	assert.Contains(t, reps, "Ali Veli")
}

func TestDetectRepsCaseOnlyDifferenceMergesToOne(t *testing.T) {
	reps := DetectReps([]string{
		"26-30 OCAK Ali Veli Planlanan.xlsx",
		"26-30 OCAK ALI VELI Yapılan.xlsx",
	})
	assert.Equal(t, []string{"Ali Veli"}, reps)

	reps = DetectReps([]string{
		"26-30 OCAK ALI VELI Yapılan.xlsx",
		"26-30 OCAK Ali Veli Planlanan.xlsx",
	})
	assert.Equal(t, []string{"Ali Veli"}, reps, "result must not depend on input order")
}

func TestDetectRepsNeedsTwoTokens(t *testing.T) {
	names := []string{
		"26-30 OCAK Veli Planlanan.xlsx",
		"26-30 OCAK A Veli Planlanan.xlsx",
		"Planlanan Ziyaret Formu 2025.xlsx",
		"Ali Veli 2025 Yapılan.xlsx",
	}
	assert.Equal(t, []string{"Ali Veli"}, DetectReps(names))
}

func TestFindRep(t *testing.T) {
	reps := []string{"Ali Veli", "Ayşe Kaya"}

	rep, ok := FindRep("26-30 OCAK ALİ_VELİ Planlanan.xlsx", reps)
	require.True(t, ok)
	assert.Equal(t, "Ali Veli", rep)

	rep, ok = FindRep("AyseKaya Yapılan.xlsx", reps)
	require.True(t, ok)
	assert.Equal(t, "Ayşe Kaya", rep)

	_, ok = FindRep("Mehmet Can Yapılan.xlsx", reps)
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	cases := map[string]model.DocType{
		"Ali Veli Planlanan Ziyaret Formu.xlsx": model.DocPlanned,
		"Ali Veli Haftalık Ziyaret Planı.xlsx":  model.DocPlanned,
		"Ali Veli Yapılan Ziyaret Formu.xlsx":   model.DocCompleted,
		"Ali Veli yapilan ziyaret.xlsx":         model.DocCompleted,
		"Ali Veli Sipariş Formu.xlsx":           model.DocOrder,
		"Ali Veli Notlar.xlsx":                  model.DocUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, Classify(name), name)
	}
}

package cache

import (
	"testing"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTranslations() []entity.CategoryTranslation {
	return []entity.CategoryTranslation{
		{Name: "beleza_saude", NameEnglish: "health_beauty"},
		{Name: "cama_mesa_banho", NameEnglish: "bed_bath_table"},
		{Name: "informatica_acessorios", NameEnglish: "computers_accessories"},
	}
}

func TestCategoryLabels(t *testing.T) {
	tr, err := NewTranslator(testTranslations())
	require.NoError(t, err)

	assert.Equal(t, "Beleza Saude", tr.CategoryLabel("health_beauty"))
	assert.Equal(t, "Cama Mesa Banho", tr.CategoryLabel("bed_bath_table"))
	assert.Equal(t, "Desconhecida", tr.CategoryLabel(entity.UnknownCategory))
	// total: untranslated codes map to themselves
	assert.Equal(t, "pc_gamer", tr.CategoryLabel("pc_gamer"))
}

func TestCategoryRoundTrip(t *testing.T) {
	tr, err := NewTranslator(testTranslations())
	require.NoError(t, err)

	codes := []string{"health_beauty", "bed_bath_table", "computers_accessories", entity.UnknownCategory}
	labels := make([]string, 0, len(codes))
	for _, c := range codes {
		labels = append(labels, tr.CategoryLabel(c))
	}
	assert.Equal(t, codes, tr.CategoryCodes(labels))

	// translating twice is stable
	again := make([]string, 0, len(codes))
	for _, c := range tr.CategoryCodes(labels) {
		again = append(again, tr.CategoryLabel(c))
	}
	assert.Equal(t, labels, again)
}

func TestEmptyEnglishName(t *testing.T) {
	_, err := NewTranslator([]entity.CategoryTranslation{{Name: "pcs", NameEnglish: ""}})
	assert.Error(t, err)
}

func TestCategoryOptionsSorted(t *testing.T) {
	tr, err := NewTranslator(testTranslations())
	require.NoError(t, err)

	opts := tr.CategoryOptions([]string{"computers_accessories", entity.UnknownCategory, "health_beauty"})
	require.Len(t, opts, 3)
	assert.Equal(t, "Beleza Saude", opts[0].Label)
	assert.Equal(t, "Desconhecida", opts[1].Label)
	assert.Equal(t, "Informatica Acessorios", opts[2].Label)
}

func TestPaymentAndWeekdayLabels(t *testing.T) {
	tr, err := NewTranslator(nil)
	require.NoError(t, err)

	assert.Equal(t, "Cartão de Crédito", tr.PaymentLabel("credit_card"))
	assert.Equal(t, "Boleto", tr.PaymentLabel("boleto"))
	assert.Equal(t, "pix", tr.PaymentLabel("pix"))
	assert.Equal(t, "Domingo", tr.WeekdayLabel(time.Sunday))
	assert.Equal(t, "Sábado", tr.WeekdayLabel(time.Saturday))
	assert.Equal(t, "Atrasado", tr.DeliveryStatusLabel(entity.DeliveryLate))
	assert.Equal(t, "No Prazo", tr.DeliveryStatusLabel(entity.DeliveryOnTime))
}

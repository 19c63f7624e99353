package xbrl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accdata/sheetscan/internal/record"
)

func TestResolver_Units(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<xbrli:unit id="gbp"><xbrli:measure>iso4217:GBP</xbrli:measure></xbrli:unit>
		<xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
		<xbrli:unit id="eur"><xbrli:measure>iso4217:EUR</xbrli:measure></xbrli:unit>
		<xbrli:unit id="shares"><xbrli:measure>xbrli:shares</xbrli:measure></xbrli:unit>
	</body></html>`)
	r := NewResolver(doc)

	tests := []struct {
		ref  string
		want record.Unit
	}{
		{"gbp", record.UnitGBP},
		{"usd", record.UnitUSD},
		{"eur", record.UnitEUR},
		{"shares", record.UnitUnknown},
	}
	for _, tt := range tests {
		u, ok := r.ResolveUnit(tt.ref)
		require.True(t, ok, tt.ref)
		assert.Equal(t, tt.want, u)
		assert.True(t, u.Valid())
	}

	_, ok := r.ResolveUnit("missing")
	assert.False(t, ok)
}

func TestResolver_Periods(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<xbrli:context id="instant">
			<xbrli:period><xbrli:instant>2016-03-31</xbrli:instant></xbrli:period>
		</xbrli:context>
		<xbrli:context id="duration">
			<xbrli:period>
				<xbrli:startDate>2015-04-01</xbrli:startDate>
				<xbrli:endDate>2016-03-31</xbrli:endDate>
			</xbrli:period>
		</xbrli:context>
	</body></html>`)
	r := NewResolver(doc)

	p, ok := r.ResolvePeriod("instant")
	require.True(t, ok)
	require.NotNil(t, p.Instant)
	assert.Equal(t, time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC), *p.Date())

	p, ok = r.ResolvePeriod("duration")
	require.True(t, ok)
	require.NotNil(t, p.Start)
	require.NotNil(t, p.End)
	assert.Equal(t, *p.End, *p.Date(), "duration contexts report their end date")

	_, ok = r.ResolvePeriod("missing")
	assert.False(t, ok)
}

func TestResolver_WordyDates(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<xbrli:context id="c">
			<xbrli:period><xbrli:instant>31 March 2016</xbrli:instant></xbrli:period>
		</xbrli:context>
	</body></html>`)
	r := NewResolver(doc)

	p, ok := r.ResolvePeriod("c")
	require.True(t, ok)
	require.NotNil(t, p.Instant)
	assert.Equal(t, time.Date(2016, 3, 31, 0, 0, 0, 0, time.UTC), *p.Instant)
}

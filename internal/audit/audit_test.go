package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel_CanonicalAnyCase(t *testing.T) {
	cases := map[string]Level{
		"kritik":   LevelCritical,
		"Kritik":   LevelCritical,
		"KRITIK":   LevelCritical,
		"KRİTİK":   LevelCritical,
		"yüksek":   LevelHigh,
		"YÜKSEK":   LevelHigh,
		"Yüksek":   LevelHigh,
		"orta":     LevelMedium,
		"ORTA":     LevelMedium,
		"düşük":    LevelLow,
		"DÜŞÜK":    LevelLow,
		"Düşük":    LevelLow,
		"du\u0308s\u0327u\u0308k": LevelLow,
	}
	for label, want := range cases {
		assert.Equal(t, want, ParseLevel(label), "label %q", label)
	}
}

func TestParseLevel_UnmatchedIsUnknown(t *testing.T) {
	for _, label := range []string{"", "critical", "high", "kritik ", " orta", "yuksek", "dusuk", "bilinmiyor"} {
		lvl := ParseLevel(label)
		assert.Equal(t, LevelUnknown, lvl, "label %q", label)
		assert.False(t, lvl.Known())
		assert.Equal(t, "unknown", lvl.Name())
	}
}

func TestAuditRequest_WithHelpersCopy(t *testing.T) {
	base := AuditRequest{ProjectName: "a"}
	next := base.WithDescription("collects faces").WithIndustry("Retail")

	assert.Equal(t, "", base.Description)
	assert.Equal(t, "collects faces", next.Description)
	assert.Equal(t, "Retail", next.Industry)
	assert.Equal(t, "a", next.ProjectName)

	assert.ErrorIs(t, base.Validate(), ErrEmptyDescription)
	assert.NoError(t, next.Validate())
}

func TestDecodeReport_PreservesRiskOrder(t *testing.T) {
	body := []byte(`{
		"project_name": "Face ID Kiosk",
		"overall_risk_score": 82,
		"risk_level": "kritik",
		"summary": "High biometric risk.",
		"risks": [
			{"risk_type": "A", "severity": "Kritik", "description": "d", "recommendation": "r"},
			{"risk_type": "B", "severity": "Orta", "description": "d", "recommendation": "r"},
			{"risk_type": "C", "severity": "Düşük", "description": "d", "recommendation": "r"}
		]
	}`)

	report, err := DecodeReport(body)
	require.NoError(t, err)
	assert.Equal(t, 82, report.OverallRiskScore)
	assert.Equal(t, LevelCritical, report.Level())
	require.Len(t, report.Risks, 3)
	assert.Equal(t, "A", report.Risks[0].RiskType)
	assert.Equal(t, "B", report.Risks[1].RiskType)
	assert.Equal(t, "C", report.Risks[2].RiskType)
}

func TestDecodeReport_NullRisksBecomeEmpty(t *testing.T) {
	for _, body := range []string{
		`{"overall_risk_score": 10, "risk_level": "düşük", "summary": "ok", "risks": null}`,
		`{"overall_risk_score": 10, "risk_level": "düşük", "summary": "ok"}`,
	} {
		report, err := DecodeReport([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, report.Risks)
		assert.Empty(t, report.Risks)
	}
}

func TestDecodeReport_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", ``, ""},
		{"malformed", `{"overall_risk_score":`, ""},
		{"wrong type", `{"overall_risk_score": "high"}`, ""},
		{"missing score", `{"risk_level": "orta", "risks": []}`, "overall_risk_score"},
		{"above range", `{"overall_risk_score": 101, "risks": []}`, "overall_risk_score"},
		{"below range", `{"overall_risk_score": -1, "risks": []}`, "overall_risk_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReport([]byte(tt.body))
			require.Error(t, err)
			var de *DecodeError
			require.True(t, errors.As(err, &de), "expected DecodeError, got %T", err)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDecodeReport_BoundaryScores(t *testing.T) {
	for _, score := range []string{"0", "100"} {
		_, err := DecodeReport([]byte(`{"overall_risk_score": ` + score + `, "risks": []}`))
		assert.NoError(t, err, "score %s", score)
	}
}

func TestDecodeProject_NumericIDAndNaiveTimestamp(t *testing.T) {
	body := []byte(`{
		"id": 7,
		"name": "Face ID Kiosk",
		"description": "Collects facial images for entry.",
		"status": "completed",
		"risk_level": "Kritik",
		"risk_score": 82,
		"created_at": "2026-10-19T12:30:00.123456",
		"audit_report": {"summary": "High biometric risk.", "risks": null}
	}`)

	p, err := DecodeProject(body)
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, LevelCritical, p.Level())
	assert.Equal(t, time.Date(2026, 10, 19, 12, 30, 0, 123456000, time.UTC), p.CreatedAt)
	require.NotNil(t, p.AuditReport.Risks)
	assert.Empty(t, p.AuditReport.Risks)

	report := p.Report()
	assert.Equal(t, "Face ID Kiosk", report.ProjectName)
	assert.Equal(t, 82, report.OverallRiskScore)
	assert.Equal(t, "Kritik", report.RiskLevel)
	assert.Equal(t, "High biometric risk.", report.Summary)
}

func TestStoredProjectReport_RecordLevelAndScoreWin(t *testing.T) {
	p := StoredProject{
		ID:        "42",
		Name:      "Face ID Kiosk",
		RiskLevel: "kritik",
		RiskScore: 82,
		AuditReport: AuditReport{
			ProjectName:      "Kiosk v1",
			OverallRiskScore: 30,
			RiskLevel:        "orta",
			Summary:          "High biometric risk.",
		},
	}

	r := p.Report()
	assert.Equal(t, "Face ID Kiosk", r.ProjectName)
	assert.Equal(t, 82, r.OverallRiskScore)
	assert.Equal(t, "kritik", r.RiskLevel)
	assert.Equal(t, LevelCritical, ParseLevel(r.RiskLevel))
	assert.Equal(t, "High biometric risk.", r.Summary)
	assert.NotNil(t, r.Risks)

	blank := StoredProject{AuditReport: AuditReport{ProjectName: "Kiosk v1", RiskLevel: "orta"}}
	assert.Equal(t, "Kiosk v1", blank.Report().ProjectName)
	assert.Equal(t, "orta", blank.Report().RiskLevel)
}

func TestDecodeProject_MissingReportIsEmpty(t *testing.T) {
	p, err := DecodeProject([]byte(`{"id": "abc", "name": "n", "risk_score": 5, "created_at": "2026-10-19T08:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", p.ID)
	assert.NotNil(t, p.AuditReport.Risks)
	assert.Empty(t, p.Report().Risks)
}

func TestDecodeProject_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing id", `{"name": "n"}`, "id"},
		{"fractional id", `{"id": 1.5}`, "id"},
		{"bad timestamp", `{"id": 1, "created_at": "yesterday"}`, "created_at"},
		{"score out of range", `{"id": 1, "risk_score": 140}`, "risk_score"},
		{"embedded score out of range", `{"id": 1, "audit_report": {"overall_risk_score": 400}}`, "overall_risk_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeProject([]byte(tt.body))
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDecodeProjects_EmptyAndNull(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		list, skipped, err := DecodeProjects([]byte(body))
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
		assert.Empty(t, skipped)
	}
}

func TestDecodeProjects_SkipsBadRecords(t *testing.T) {
	list, skipped, err := DecodeProjects([]byte(`[
		{"id": 1, "risk_score": 50},
		{"id": 2, "risk_score": 101},
		{"id": 3, "risk_score": "high"},
		{"id": 4, "risk_score": 10}
	]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "4", list[1].ID)

	require.Len(t, skipped, 2)
	assert.Equal(t, "project list[1]", skipped[0].Shape)
	assert.Equal(t, "risk_score", skipped[0].Field)
	assert.Contains(t, skipped[0].Error(), "101 outside [0,100]")
	assert.Equal(t, "project list[2]", skipped[1].Shape)
}

func TestDecodeProjects_RejectsNonArray(t *testing.T) {
	for _, body := range []string{``, `{"id": 1}`, `[{"id": 1}`} {
		_, _, err := DecodeProjects([]byte(body))
		var de *DecodeError
		require.ErrorAs(t, err, &de, body)
		assert.Equal(t, "project list", de.Shape)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format("02.01.2006"), FormatDate(ts, "tr-TR"))
	assert.Equal(t, ts.Local().Format("1/2/2006"), FormatDate(ts, "en-US"))
	assert.Equal(t, ts.Local().Format("02/01/2006"), FormatDate(ts, "en-GB"))
	assert.Equal(t, ts.Local().Format("02.01.2006"), FormatDate(ts, "not a locale!"))
	assert.Equal(t, "-", FormatDate(time.Time{}, "tr-TR"))
}

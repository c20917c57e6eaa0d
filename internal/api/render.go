package api

import (
	"math"
	"time"

	"millops-backend/internal/model"
	"millops-backend/internal/store"
)

// Timestamps are stored as naive UTC and rendered to clients as ISO-8601
// with a fixed +05:30 offset applied at this boundary only.
var istZone = time.FixedZone("IST", 5*3600+30*60)

// istTime renders a timestamp in the fixed IST offset.
type istTime time.Time

func (t istTime) MarshalJSON() ([]byte, error) {
	formatted := time.Time(t).In(istZone).Format(time.RFC3339)
	return []byte(`"` + formatted + `"`), nil
}

func istPtr(t *time.Time) *istTime {
	if t == nil {
		return nil
	}
	v := istTime(*t)
	return &v
}

// sanitizeFloat hands back nil for NaN/±Inf so they serialize as null.
func sanitizeFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func sanitizeFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	return sanitizeFloat(*f)
}

type godownResponse struct {
	ID             uint     `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	CurrentStorage *float64 `json:"current_storage"`
}

func newGodownResponse(g *model.Godown) *godownResponse {
	if g == nil {
		return nil
	}
	return &godownResponse{
		ID:             g.ID,
		Name:           g.Name,
		Type:           g.Type,
		CurrentStorage: sanitizeFloat(g.CurrentStorage),
	}
}

type binResponse struct {
	ID              uint            `json:"id"`
	BinNumber       string          `json:"bin_number"`
	Capacity        *float64        `json:"capacity"`
	CurrentQuantity *float64        `json:"current_quantity"`
	Status          model.BinStatus `json:"status"`
}

func newBinResponse(b *model.Bin) *binResponse {
	if b == nil {
		return nil
	}
	return &binResponse{
		ID:              b.ID,
		BinNumber:       b.BinNumber,
		Capacity:        sanitizeFloat(b.Capacity),
		CurrentQuantity: sanitizeFloat(b.CurrentQuantity),
		Status:          b.Status,
	}
}

type sessionMagnetResponse struct {
	MagnetID      uint    `json:"magnet_id"`
	Name          string  `json:"name"`
	IntervalSecs  int64   `json:"interval_secs"`
	IntervalHours float64 `json:"interval_hours"`
	SequenceNo    int     `json:"sequence_no"`
}

type binTransferResponse struct {
	ID         uint     `json:"id"`
	BinID      uint     `json:"bin_id"`
	BinNumber  string   `json:"bin_number,omitempty"`
	SequenceNo int      `json:"sequence_no"`
	StartedAt  istTime  `json:"started_at"`
	EndedAt    *istTime `json:"ended_at"`
	Quantity   *float64 `json:"quantity"`
}

// sessionResponse is the TransferSessionWithDetails payload.
type sessionResponse struct {
	ID                  uint                    `json:"id"`
	Status              model.SessionStatus     `json:"status"`
	Notes               string                  `json:"notes,omitempty"`
	SourceGodown        *godownResponse         `json:"source_godown"`
	DestinationBin      *binResponse            `json:"destination_bin"`
	CurrentBin          *binResponse            `json:"current_bin"`
	StartedAt           istTime                 `json:"started_at"`
	CurrentBinStartedAt istTime                 `json:"current_bin_started_at"`
	StoppedAt           *istTime                `json:"stopped_at"`
	TransferredQuantity *float64                `json:"transferred_quantity"`
	Magnets             []sessionMagnetResponse `json:"magnets"`
	BinTransfers        []binTransferResponse   `json:"bin_transfers,omitempty"`
}

func newSessionResponse(s *model.TransferSession) sessionResponse {
	resp := sessionResponse{
		ID:                  s.ID,
		Status:              s.Status,
		Notes:               s.Notes,
		SourceGodown:        newGodownResponse(s.SourceGodown),
		DestinationBin:      newBinResponse(s.DestinationBin),
		CurrentBin:          newBinResponse(s.CurrentBin),
		StartedAt:           istTime(s.StartedAt),
		CurrentBinStartedAt: istTime(s.CurrentBinStartedAt),
		StoppedAt:           istPtr(s.StoppedAt),
		TransferredQuantity: sanitizeFloatPtr(s.TransferredQuantity),
		Magnets:             make([]sessionMagnetResponse, 0, len(s.Magnets)),
	}

	for _, sm := range s.Magnets {
		mr := sessionMagnetResponse{
			MagnetID:      sm.MagnetID,
			IntervalSecs:  sm.IntervalSecs,
			IntervalHours: float64(sm.IntervalSecs) / 3600,
			SequenceNo:    sm.SequenceNo,
		}
		if sm.Magnet != nil {
			mr.Name = sm.Magnet.Name
		}
		resp.Magnets = append(resp.Magnets, mr)
	}

	for _, span := range s.BinTransfers {
		br := binTransferResponse{
			ID:         span.ID,
			BinID:      span.BinID,
			SequenceNo: span.SequenceNo,
			StartedAt:  istTime(span.StartedAt),
			EndedAt:    istPtr(span.EndedAt),
			Quantity:   sanitizeFloatPtr(span.Quantity),
		}
		if span.Bin != nil {
			br.BinNumber = span.Bin.BinNumber
		}
		resp.BinTransfers = append(resp.BinTransfers, br)
	}

	return resp
}

// magnetStatusResponse renders one evaluated cleaning-interval state.
type magnetStatusResponse struct {
	SessionID      uint     `json:"session_id"`
	MagnetID       uint     `json:"magnet_id"`
	MagnetName     string   `json:"magnet_name"`
	IntervalSecs   int64    `json:"interval_secs"`
	IntervalNumber int64    `json:"interval_number"`
	IntervalStart  istTime  `json:"interval_start"`
	LastCleanedAt  *istTime `json:"last_cleaned_at"`
	Overdue        bool     `json:"overdue"`
}

func newMagnetStatusResponses(statuses []store.MagnetIntervalStatus) []magnetStatusResponse {
	out := make([]magnetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, magnetStatusResponse{
			SessionID:      st.SessionID,
			MagnetID:       st.MagnetID,
			MagnetName:     st.MagnetName,
			IntervalSecs:   st.IntervalSecs,
			IntervalNumber: st.IntervalNumber,
			IntervalStart:  istTime(st.IntervalStart),
			LastCleanedAt:  istPtr(st.LastCleanedAt),
			Overdue:        st.Overdue,
		})
	}
	return out
}

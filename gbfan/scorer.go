package gbfan

import (
	"github.com/kevin-chtw/tw_replay/replay"
)

// Scorer 把本包的算番挂到回放分析器的算番契约上
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

func (s *Scorer) Calculate(hand string) (int, []replay.GBFanDetail, error) {
	res, err := Calculate(hand)
	if err != nil {
		return 0, nil, err
	}
	details := make([]replay.GBFanDetail, 0, len(res.Details))
	for _, d := range res.Details {
		details = append(details, replay.GBFanDetail{Name: d.Name, Points: d.Points, Count: d.Count})
	}
	return res.TotalFan, details, nil
}

package aggregate

import (
	"sort"
	"strings"
	"time"
)

// Status de uma aposta. VOID só é alcançável por edição direta do usuário,
// nunca pelo settlement-worker.
const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"
	StatusVoid    = "VOID"
)

// Bet é a projeção mínima de uma aposta necessária para agregação.
// Campos extraídos do comprovante são todos opcionais.
type Bet struct {
	ID        string
	UserID    string
	Sport     *string
	Event     *string
	Bookmaker *string
	Tipster   *string
	Odds      *float64
	Stake     *float64
	Status    string
	PlacedAt  time.Time
	ResultAt  *time.Time
}

// ROIBasis define qual base de stake entra no denominador do ROI.
// "decided" considera só apostas decididas (WON+LOST); "all" considera tudo.
type ROIBasis string

const (
	BasisDecided ROIBasis = "decided"
	BasisAll     ROIBasis = "all"
)

// ParseBasis interpreta o valor de configuração; default é decided.
func ParseBasis(s string) ROIBasis {
	if strings.EqualFold(s, string(BasisAll)) {
		return BasisAll
	}
	return BasisDecided
}

// MonthlyPoint é o agregado de um mês-calendário ("2006-01").
type MonthlyPoint struct {
	Month     string  `json:"month"`
	Profit    float64 `json:"profit"`
	BetsCount int     `json:"bets_count"`
}

// SportSlice é o agregado de um valor distinto de sport.
type SportSlice struct {
	Sport  string  `json:"sport"`
	Count  int     `json:"count"`
	Profit float64 `json:"profit"`
}

// Summary é o resumo de performance de um usuário.
// O formato JSON é o contrato consumido pelo dashboard.
type Summary struct {
	TotalBets         int            `json:"total_bets"`
	WonBets           int            `json:"won_bets"`
	LostBets          int            `json:"lost_bets"`
	PendingBets       int            `json:"pending_bets"`
	TotalStaked       float64        `json:"total_staked"`
	TotalProfit       float64        `json:"total_profit"`
	WinRate           float64        `json:"win_rate"`
	ROI               float64        `json:"roi"`
	MonthlyData       []MonthlyPoint `json:"monthly_data"`
	SportDistribution []SportSlice   `json:"sport_distribution"`
}

// Profit calcula o lucro de uma única aposta:
// WON -> (odds × stake) − stake; LOST -> −stake; PENDING/VOID -> 0.
// Campos ausentes contribuem com zero.
func Profit(b Bet) float64 {
	switch b.Status {
	case StatusWon:
		if b.Odds == nil || b.Stake == nil {
			return 0
		}
		return (*b.Odds)*(*b.Stake) - *b.Stake
	case StatusLost:
		if b.Stake == nil {
			return 0
		}
		return -*b.Stake
	default:
		return 0
	}
}

// Compute agrega o conjunto de apostas já filtrado/escopado por usuário.
// Conjunto vazio produz zeros e listas vazias, nunca NaN.
func Compute(bets []Bet, basis ROIBasis) Summary {
	s := Summary{
		MonthlyData:       make([]MonthlyPoint, 0),
		SportDistribution: make([]SportSlice, 0),
	}

	var decidedStake float64
	monthly := make(map[string]*MonthlyPoint)
	bySport := make(map[string]*SportSlice)

	for _, b := range bets {
		s.TotalBets++

		switch b.Status {
		case StatusWon:
			s.WonBets++
		case StatusLost:
			s.LostBets++
		case StatusPending:
			s.PendingBets++
		}

		stake := 0.0
		if b.Stake != nil {
			stake = *b.Stake
		}
		// stake pendente continua "em risco", então sempre soma
		s.TotalStaked += stake
		if b.Status == StatusWon || b.Status == StatusLost {
			decidedStake += stake
		}

		p := Profit(b)
		s.TotalProfit += p

		key := b.PlacedAt.Format("2006-01")
		mp, ok := monthly[key]
		if !ok {
			mp = &MonthlyPoint{Month: key}
			monthly[key] = mp
		}
		mp.Profit += p
		mp.BetsCount++

		if b.Sport != nil && *b.Sport != "" {
			sp, ok := bySport[*b.Sport]
			if !ok {
				sp = &SportSlice{Sport: *b.Sport}
				bySport[*b.Sport] = sp
			}
			sp.Count++
			sp.Profit += p
		}
	}

	if decided := s.WonBets + s.LostBets; decided > 0 {
		s.WinRate = float64(s.WonBets) / float64(decided) * 100
	}

	roiBase := decidedStake
	if basis == BasisAll {
		roiBase = s.TotalStaked
	}
	if roiBase > 0 {
		s.ROI = s.TotalProfit / roiBase * 100
	}

	for _, mp := range monthly {
		s.MonthlyData = append(s.MonthlyData, *mp)
	}
	sort.Slice(s.MonthlyData, func(i, j int) bool {
		return s.MonthlyData[i].Month < s.MonthlyData[j].Month
	})

	for _, sp := range bySport {
		s.SportDistribution = append(s.SportDistribution, *sp)
	}
	sort.Slice(s.SportDistribution, func(i, j int) bool {
		if s.SportDistribution[i].Count != s.SportDistribution[j].Count {
			return s.SportDistribution[i].Count > s.SportDistribution[j].Count
		}
		return s.SportDistribution[i].Sport < s.SportDistribution[j].Sport
	})

	return s
}

// CumulativeProfit deriva a série de lucro acumulado a partir de MonthlyData
// já ordenado. Derivação de apresentação; nunca é armazenada.
func CumulativeProfit(monthly []MonthlyPoint) []float64 {
	out := make([]float64, len(monthly))
	var acc float64
	for i, mp := range monthly {
		acc += mp.Profit
		out[i] = acc
	}
	return out
}

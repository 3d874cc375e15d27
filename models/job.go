package models

// Job is one entry of the fixed work-job table. Payout is a uniformly
// random integer in [MinPay, MaxPay].
type Job struct {
	Name   string
	MinPay int64
	MaxPay int64
}

// Jobs is the fixed table the work command draws from.
var Jobs = []Job{
	{Name: "delivery rider", MinPay: 80, MaxPay: 220},
	{Name: "barista", MinPay: 90, MaxPay: 240},
	{Name: "street musician", MinPay: 40, MaxPay: 320},
	{Name: "dog walker", MinPay: 60, MaxPay: 180},
	{Name: "freelance coder", MinPay: 150, MaxPay: 400},
	{Name: "taxi driver", MinPay: 100, MaxPay: 280},
	{Name: "fishmonger", MinPay: 70, MaxPay: 210},
	{Name: "night guard", MinPay: 120, MaxPay: 260},
}

package services

import "time"

func SetReportClock(s ReportService, now func() time.Time) {
	s.(*reportService).now = now
}

func SetPasswordCost(s UserService, cost int) {
	s.(*userService).cost = cost
}

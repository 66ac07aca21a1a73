package service

import "time"

// Clock setters for tests in service_test.

func (s *TrackerService) SetClock(now func() time.Time) { s.now = now }

func (s *ReportService) SetClock(now func() time.Time) { s.now = now }

func (s *MonthlyTargetService) SetClock(now func() time.Time) { s.now = now }

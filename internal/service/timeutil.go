package service

import (
	"errors"
	"time"
)

// ErrInvalidDateRange 日期范围不合法
var ErrInvalidDateRange = errors.New("日期范围不合法")

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02T15:04:05Z07:00"
)

// parseDateRange 解析 [from, to] 闭区间日期，返回 [from 零点, to 次日零点)
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		start = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, ErrInvalidDateRange
	}
	return start, end, nil
}

// monthRange 按年 / 月筛选：只给年取整年，只给月取当年该月
func monthRange(year, month int, now time.Time) (*time.Time, *time.Time) {
	if year == 0 && month == 0 {
		return nil, nil
	}
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		end := start.AddDate(1, 0, 0)
		return &start, &end
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)
	return &start, &end
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

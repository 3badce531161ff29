package workspace

import (
	"github.com/boredapes/ctaplanner/pkg/event"
	"github.com/boredapes/ctaplanner/pkg/schedule"
)

type EventDTO struct {
	Id         string `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Timestamp  int64  `json:"timestamp"`
	Category   string `json:"category"`
	MinMembers *int   `json:"minMembers,omitempty"`
	Team       string `json:"team,omitempty"`
}

type GroupDTO struct {
	Slot   string     `json:"slot"`
	Events []EventDTO `json:"events"`
}

type ScheduleDTO struct {
	Groups []GroupDTO `json:"groups"`
	Count  int        `json:"count"`
	Busy   bool       `json:"busy"`
}

type StatusDTO struct {
	Busy  bool `json:"busy"`
	Count int  `json:"count"`
}

type SubmitResultDTO struct {
	ScheduleId string `json:"scheduleId"`
	Outcome    string `json:"outcome"`
	Events     int    `json:"events"`
}

func EventToDTO(record event.EventRecord) EventDTO {
	dto := EventDTO{
		Id:         record.Id,
		Date:       record.Date,
		Time:       record.Time,
		Timestamp:  record.Timestamp,
		Category:   string(record.Category),
		MinMembers: record.MinMembers,
	}
	if record.Team != nil {
		dto.Team = string(*record.Team)
	}
	return dto
}

func GroupsToDTO(groups []schedule.Group) []GroupDTO {
	dtos := make([]GroupDTO, 0, len(groups))
	for _, group := range groups {
		events := make([]EventDTO, 0, len(group.Events))
		for _, record := range group.Events {
			events = append(events, EventToDTO(record))
		}
		dtos = append(dtos, GroupDTO{Slot: group.Slot, Events: events})
	}
	return dtos
}

func scheduleToDTO(w *Workspace) ScheduleDTO {
	groups := w.Groups()
	count := 0
	for _, group := range groups {
		count += len(group.Events)
	}
	return ScheduleDTO{Groups: GroupsToDTO(groups), Count: count, Busy: w.Busy()}
}

package memory

import (
	"time"

	"github.com/riskibarqy/tournament-api/internal/domain/player"
	"github.com/riskibarqy/tournament-api/internal/domain/team"
	"github.com/riskibarqy/tournament-api/internal/domain/tournament"
)

const (
	TournamentIDCityCup     int64 = 1
	TournamentIDYouthLeague int64 = 2
)

func SeedTournaments() []tournament.Tournament {
	cupStart := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	cupEnd := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	youthStart := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)

	return []tournament.Tournament{
		{ID: TournamentIDCityCup, Name: "City Cup", StartDate: &cupStart, EndDate: &cupEnd},
		{ID: TournamentIDYouthLeague, Name: "Youth League", StartDate: &youthStart},
	}
}

func SeedConfigurations() []tournament.Configuration {
	return []tournament.Configuration{
		{TournamentID: TournamentIDCityCup, NumberOfGroups: 1, TeamsPerGroup: 4, IsConfigured: true},
		{TournamentID: TournamentIDYouthLeague, NumberOfGroups: 2, TeamsPerGroup: 2, IsConfigured: false},
	}
}

// SeedTournamentTeams maps tournament ids to registered team ids.
func SeedTournamentTeams() map[int64][]int64 {
	return map[int64][]int64{
		TournamentIDCityCup:     {10, 20, 30, 40},
		TournamentIDYouthLeague: {30, 40},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: 10, Name: "Persija Jakarta", LogoPath: "teams/10.png"},
		{ID: 20, Name: "Persib Bandung", LogoPath: "teams/20.png"},
		{ID: 30, Name: "Persebaya Surabaya", LogoPath: "teams/30.png"},
		{ID: 40, Name: "Bali United", LogoPath: "teams/40.png"},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: 101, TeamID: 10, FirstName: "Andritany", LastName: "Ardhiyasa", JerseyNumber: 1, Position: player.PositionGoalkeeper},
		{ID: 102, TeamID: 10, FirstName: "Hansamu", LastName: "Yama", JerseyNumber: 4, Position: player.PositionDefender},
		{ID: 103, TeamID: 10, FirstName: "Maciej", LastName: "Gajos", JerseyNumber: 8, Position: player.PositionMidfielder},
		{ID: 104, TeamID: 10, FirstName: "Gustavo", LastName: "Almeida", JerseyNumber: 9, Position: player.PositionForward},
		{ID: 201, TeamID: 20, FirstName: "Teja", LastName: "Paku Alam", JerseyNumber: 1, Position: player.PositionGoalkeeper},
		{ID: 202, TeamID: 20, FirstName: "Nick", LastName: "Kuipers", JerseyNumber: 5, Position: player.PositionDefender},
		{ID: 203, TeamID: 20, FirstName: "Marc", LastName: "Klok", JerseyNumber: 10, Position: player.PositionMidfielder},
		{ID: 204, TeamID: 20, FirstName: "David", LastName: "da Silva", JerseyNumber: 19, Position: player.PositionForward},
		{ID: 301, TeamID: 30, FirstName: "Dusan", LastName: "Stevanovic", JerseyNumber: 3, Position: player.PositionDefender},
		{ID: 302, TeamID: 30, FirstName: "Bruno", LastName: "Moreira", JerseyNumber: 7, Position: player.PositionMidfielder},
		{ID: 303, TeamID: 30, FirstName: "Paulo", LastName: "Henrique", JerseyNumber: 9, Position: player.PositionForward},
		{ID: 401, TeamID: 40, FirstName: "Ricky", LastName: "Fajrin", JerseyNumber: 2, Position: player.PositionDefender},
		{ID: 402, TeamID: 40, FirstName: "Eber", LastName: "Bessa", JerseyNumber: 10, Position: player.PositionMidfielder},
		{ID: 403, TeamID: 40, FirstName: "Mitsuru", LastName: "Maruoka", JerseyNumber: 14, Position: player.PositionMidfielder},
	}
}

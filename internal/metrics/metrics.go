// metrics.go
//
// A community service for builders, their firms and their building projects
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of buildnet.
// buildnet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// buildnet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with buildnet.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FollowRequests counts follow calls by result
	FollowRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildnet_follow_requests_total",
			Help: "Total number of follow requests",
		},
		[]string{"result"},
	)

	// UnfollowRequests counts unfollow calls by result
	UnfollowRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildnet_unfollow_requests_total",
			Help: "Total number of unfollow requests",
		},
		[]string{"result"},
	)

	// PostsCreated counts new posts by forum scope
	PostsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildnet_posts_created_total",
			Help: "Total number of posts created",
		},
		[]string{"scope"},
	)

	// JobOffers counts offers sent, accepted and withdrawn
	JobOffers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildnet_job_offers_total",
			Help: "Total number of job offer transitions",
		},
		[]string{"event"},
	)

	// SearchIndexOps counts operations pushed to the search index
	SearchIndexOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildnet_search_index_operations_total",
			Help: "Total number of search index operations",
		},
		[]string{"index", "op", "result"},
	)
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package profile implements the Profile view: the signed-in user's email,
access level, and AWS account status, with an action to request an account.

# Data flow

The view resolves the username from an identity.Provider, then polls the
user record through users.API on the cadence set by a poll.Scheduler. Polling
runs only while the terminal reports focus (see tea.WithReportFocus). Fetch
results for any identity other than the current one are dropped.

# Render states

Exactly one of these is drawn on every render:

	Loading    no identity yet, or no successful fetch for it
	Pending    awsAccountStatus "pending": disabled "Waiting for approval..."
	Granted    any other non-empty status: "Open AWS Console" link
	Ungranted  "false" or empty: "Request AWS Access" button

# Banners

A successful request shows "Requested AWS Access!" and a failed one shows
"Error requesting account access: <message>". Each hides itself after its
configured duration or when dismissed with x.
*/
package profile

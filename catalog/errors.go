// SPDX-License-Identifier: EPL-2.0

package catalog

import "errors"

var ErrMalformedLine = errors.New("malformed catalog line")

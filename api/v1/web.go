package v1

import "net/http"

// Web serves the drawing page: a 256x256 canvas with label and quality
// selectors, plus the gallery with filters and per-image delete buttons.
func Web() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		html := `
<!DOCTYPE html>
<html>
<head>
    <title>Shape Gallery</title>
    <style>
        body {
            font-family: sans-serif;
            margin: 20px;
        }
        #pad {
            border: 1px solid #888;
            cursor: crosshair;
            touch-action: none;
        }
        .controls {
            margin: 10px 0;
        }
        .controls label {
            margin-right: 10px;
        }
        #gallery {
            display: flex;
            flex-wrap: wrap;
            gap: 10px;
            margin-top: 10px;
        }
        .card {
            border: 1px solid #ccc;
            padding: 5px;
            text-align: center;
            font-size: 12px;
        }
        .card img {
            width: 128px;
            height: 128px;
        }
    </style>
</head>
<body>
    <h2>Draw a shape</h2>
    <canvas id="pad" width="256" height="256"></canvas>
    <div class="controls">
        <label>Label:
            <select id="label">
                <option value="circle">circle</option>
                <option value="square">square</option>
                <option value="triangle">triangle</option>
            </select>
        </label>
        <label>Quality:
            <select id="quality">
                <option value="perfect">perfect</option>
                <option value="medium">medium</option>
                <option value="irregular">irregular</option>
            </select>
        </label>
        <button onclick="submitDrawing()">Save</button>
        <button onclick="clearPad()">Clear</button>
    </div>

    <h2>Gallery</h2>
    <div class="controls">
        <label>Label:
            <select id="filterLabel" onchange="loadGallery()">
                <option value="">all</option>
                <option value="circle">circle</option>
                <option value="square">square</option>
                <option value="triangle">triangle</option>
            </select>
        </label>
        <label>Quality:
            <select id="filterQuality" onchange="loadGallery()">
                <option value="">all</option>
                <option value="perfect">perfect</option>
                <option value="medium">medium</option>
                <option value="irregular">irregular</option>
            </select>
        </label>
    </div>
    <div id="gallery"></div>

    <script>
    const pad = document.getElementById('pad');
    const ctx = pad.getContext('2d');
    ctx.lineWidth = 3;
    ctx.lineCap = 'round';
    ctx.strokeStyle = 'black';
    clearPad();

    let drawing = false;

    function pos(e) {
        const rect = pad.getBoundingClientRect();
        return [e.clientX - rect.left, e.clientY - rect.top];
    }

    pad.addEventListener('pointerdown', e => {
        drawing = true;
        const [x, y] = pos(e);
        ctx.beginPath();
        ctx.moveTo(x, y);
    });
    pad.addEventListener('pointermove', e => {
        if (!drawing) return;
        const [x, y] = pos(e);
        ctx.lineTo(x, y);
        ctx.stroke();
    });
    window.addEventListener('pointerup', () => { drawing = false; });

    function clearPad() {
        ctx.fillStyle = 'white';
        ctx.fillRect(0, 0, pad.width, pad.height);
    }

    function padIsEmpty() {
        const data = ctx.getImageData(0, 0, pad.width, pad.height).data;
        for (let i = 0; i < data.length; i += 4) {
            if (data[i] !== 255 || data[i+1] !== 255 || data[i+2] !== 255) {
                return false;
            }
        }
        return true;
    }

    function submitDrawing() {
        if (padIsEmpty()) {
            alert('Draw something first');
            return;
        }
        fetch('/api/v1/shapes', {
            method: 'POST',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify({
                image: pad.toDataURL('image/png'),
                label: document.getElementById('label').value,
                quality: document.getElementById('quality').value
            })
        })
        .then(resp => {
            if (!resp.ok) {
                return resp.json().then(body => { throw new Error(body.message); });
            }
            clearPad();
            loadGallery();
        })
        .catch(err => alert('Save failed: ' + err.message));
    }

    function loadGallery() {
        const params = new URLSearchParams();
        const label = document.getElementById('filterLabel').value;
        const quality = document.getElementById('filterQuality').value;
        if (label) params.set('label', label);
        if (quality) params.set('quality', quality);

        fetch('/api/v1/shapes?' + params.toString())
        .then(resp => resp.json())
        .then(body => {
            const gallery = document.getElementById('gallery');
            gallery.innerHTML = '';
            for (const img of body.images) {
                const card = document.createElement('div');
                card.className = 'card';
                const el = document.createElement('img');
                el.src = img.image || img.path;
                const caption = document.createElement('div');
                caption.textContent = img.label + ' / ' + img.quality;
                const del = document.createElement('button');
                del.textContent = 'Delete';
                del.onclick = () => removeImage(img);
                card.append(el, caption, del);
                gallery.appendChild(card);
            }
        })
        .catch(err => console.error('Error:', err));
    }

    function removeImage(img) {
        fetch('/api/v1/shapes', {
            method: 'DELETE',
            headers: {'Content-Type': 'application/json'},
            body: JSON.stringify({
                filename: img.filename,
                label: img.label,
                quality: img.quality
            })
        })
        .then(() => loadGallery())
        .catch(err => console.error('Error:', err));
    }

    loadGallery();
    </script>
</body>
</html>`

		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}
}

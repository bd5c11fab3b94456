package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>topcinedb dashboard</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
       background: #121212; color: #e0e0e0; margin: 0; padding: 20px; }
.container { max-width: 900px; margin: 0 auto; background: #1e1e1e; border: 1px solid #333;
             border-radius: 8px; padding: 25px; }
h1 { color: #fff; border-bottom: 2px solid #444; padding-bottom: 10px; margin-top: 0; }
h2 { border-bottom: 1px solid #333; padding-bottom: 8px; margin-top: 30px; }
button { background: #333; color: #e0e0e0; border: 1px solid #555; padding: 12px 20px;
         border-radius: 5px; cursor: pointer; font-size: 16px; }
button:disabled { color: #555; cursor: not-allowed; }
#start-btn { background: #28a745; border-color: #28a745; color: #fff; }
#stop-btn { background: #dc3545; border-color: #dc3545; color: #fff; }
.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 15px; }
.stat-box { background: #2a2a2a; border: 1px solid #333; border-radius: 5px; padding: 15px; }
.stat-box strong { display: block; font-size: 24px; color: #fff; }
.stat-box span { font-size: 14px; color: #aaa; }
pre { background: #2a2a2a; border: 1px solid #333; padding: 15px; border-radius: 5px;
      white-space: pre-wrap; word-wrap: break-word; max-height: 300px; overflow-y: auto; }
#failed div { border-bottom: 1px solid #333; padding: 8px 0; }
#failed code { color: #dc3545; }
#failed span { color: #aaa; display: block; font-size: 0.9em; }
</style>
</head>
<body>
<div class="container">
  <h1>topcinedb</h1>
  <p>
    <button id="start-btn">Start</button>
    <button id="stop-btn" disabled>Stop</button>
  </p>
  <p>Current URL: <strong id="current-url">-</strong></p>
  <div class="stats-grid">
    <div class="stat-box"><strong id="pending">0</strong><span>Pending</span></div>
    <div class="stat-box"><strong id="completed">0</strong><span>Completed</span></div>
    <div class="stat-box"><strong id="failed-count">0</strong><span>Failed</span></div>
    <div class="stat-box"><strong id="movies">0</strong><span>Movies</span></div>
    <div class="stat-box"><strong id="series">0</strong><span>Series</span></div>
    <div class="stat-box"><strong id="anime">0</strong><span>Anime</span></div>
  </div>
  <h2>Log</h2>
  <pre id="log">waiting...</pre>
  <h2>Failed URLs</h2>
  <div id="failed"><p>None yet.</p></div>
</div>
<script>
const el = id => document.getElementById(id);
async function refresh() {
  try {
    const res = await fetch('/api/status');
    const data = await res.json();
    el('start-btn').disabled = data.running;
    el('stop-btn').disabled = !data.running;
    el('current-url').textContent = data.current_url || '-';
    const s = data.stats;
    el('pending').textContent = Math.max(0, s.total_pending - s.completed - s.failed);
    el('completed').textContent = s.completed;
    el('failed-count').textContent = s.failed;
    el('movies').textContent = s.movies;
    el('series').textContent = s.series;
    el('anime').textContent = s.anime;
    el('log').textContent = (data.log_lines || []).slice(-30).join('\n') || 'waiting...';
    if (data.failed_urls && data.failed_urls.length > 0) {
      el('failed').innerHTML = data.failed_urls.map(f =>
        '<div><code>' + f.URL + '</code><span>' + f.Error + '</span></div>').join('');
    }
  } catch (e) {
    el('log').textContent = 'status fetch failed';
  }
}
el('start-btn').addEventListener('click', () => fetch('/api/start', {method: 'POST'}).then(refresh));
el('stop-btn').addEventListener('click', () => fetch('/api/stop', {method: 'POST'}).then(refresh));
setInterval(refresh, 2000);
refresh();
</script>
</body>
</html>
`
